// The common package holds types and variables shared by the kpub
// packages.
package common

import (
	"io"
	"log"
)

// Prefix is prepended to every line written through the default
// Logger.
const Prefix = "[kpub] "

// Logger is used by all kpub packages for logging. By default it is
// bound to io.Discard, which keeps it quiet. Should you wish to see
// logging output, set it to any implementation of StdLogger, for
// instance the *log.Logger returned by zap.NewStdLog.
var Logger StdLogger = log.New(io.Discard, Prefix, log.LstdFlags)

// StdLogger is the interface you need to implement on whatever logger
// you use for Logger. It is satisfied by *log.Logger and matches
// sarama.StdLogger, so the same value can be handed to Sarama.
type StdLogger interface {
	Print(v ...interface{})
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// Or returns l when it is not nil and Logger otherwise.
func Or(l StdLogger) StdLogger {
	if l != nil {
		return l
	}
	return Logger
}
