package syslog

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Stats is a snapshot of a sender's running counters.
type Stats struct {
	// SendCount is the number of Send calls.
	SendCount int64

	// SendErrorCount is the number of Send calls that returned an error,
	// counted once per call no matter how many attempts were made.
	SendErrorCount int64

	// TrySendErrorCount is the number of failed attempts, including those
	// that were followed by a successful retry.
	TrySendErrorCount int64

	// SendDuration is the cumulative time spent inside Send.
	SendDuration time.Duration
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (s Stats) MarshalZerologObject(e *zerolog.Event) {
	e.Int64("sends", s.SendCount).
		Int64("send_errors", s.SendErrorCount).
		Int64("try_send_errors", s.TrySendErrorCount).
		Dur("send_duration", s.SendDuration)
}

type counters struct {
	sends      atomic.Int64
	sendErrors atomic.Int64
	tryErrors  atomic.Int64
	nanos      atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		SendCount:         c.sends.Load(),
		SendErrorCount:    c.sendErrors.Load(),
		TrySendErrorCount: c.tryErrors.Load(),
		SendDuration:      time.Duration(c.nanos.Load()),
	}
}

// track counts a Send call and returns the func that records its duration.
func (c *counters) track() func() {
	c.sends.Add(1)
	start := time.Now()
	return func() { c.nanos.Add(int64(time.Since(start))) }
}
