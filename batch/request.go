package batch

import (
	"github.com/heetch/kpub/message"
)

// TopicMessages holds the messages of a batch sent to one topic.
type TopicMessages struct {
	Topic    string
	Messages []message.TopicMessage
}

// Request is a single batched publish request.
type Request struct {
	Topics []TopicMessages
	Delivery
}

// Len returns the number of messages in r.
func (r *Request) Len() int {
	n := 0
	for _, t := range r.Topics {
		n += len(t.Messages)
	}
	return n
}

// Messages returns every message of r, topic by topic.
func (r *Request) Messages() []message.TopicMessage {
	msgs := make([]message.TopicMessage, 0, r.Len())
	for _, t := range r.Topics {
		msgs = append(msgs, t.Messages...)
	}
	return msgs
}

func (r *Request) add(m message.TopicMessage) {
	for i := range r.Topics {
		if r.Topics[i].Topic == m.Topic {
			r.Topics[i].Messages = append(r.Topics[i].Messages, m)
			return
		}
	}
	r.Topics = append(r.Topics, TopicMessages{
		Topic:    m.Topic,
		Messages: []message.TopicMessage{m},
	})
}
