// Package result turns broker outcomes into output records.
package result

import (
	"strconv"
	"time"

	"github.com/heetch/kpub/producer"
)

// Record is a single output record.
type Record map[string]interface{}

// Map returns one record per outcome, in order. When the broker
// reported no outcome, it returns a single success marker instead of
// an empty output.
func Map(outcomes []producer.Outcome) []Record {
	if len(outcomes) == 0 {
		return []Record{Success()}
	}
	records := make([]Record, len(outcomes))
	for i, o := range outcomes {
		records[i] = Record{
			"topicName":  o.Topic,
			"partition":  o.Partition,
			"errorCode":  0,
			"baseOffset": strconv.FormatInt(o.Offset, 10),
			"timestamp":  timestamp(o.Timestamp),
		}
	}
	return records
}

// Success returns the record used when the broker reports nothing.
func Success() Record {
	return Record{"success": true}
}

// Failure returns the record standing for a failed execution.
func Failure(err error) Record {
	return Record{"error": err.Error()}
}

// timestamp renders t in milliseconds since the epoch, -1 when unset.
func timestamp(t time.Time) string {
	if t.IsZero() {
		return "-1"
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}
