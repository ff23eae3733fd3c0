package syslog

import (
	"errors"
)

// Sender is implemented by TCPSender and UDPSender.
type Sender interface {
	// Send encodes m and delivers it to the syslog server.
	Send(m Message) error

	// SendString sends body with the configured default facility, severity,
	// app name and hostname.
	SendString(body string) error

	// Stats returns a snapshot of the sender's counters.
	Stats() Stats

	// Close releases the sender's connection. Send fails after Close.
	Close() error
}

// compile-time check for Sender conformance
var _ Sender = (*TCPSender)(nil)
var _ Sender = (*UDPSender)(nil)

// NewSender returns a UDPSender when opts.Network is "udp", and otherwise a
// TCPSender.
func NewSender(host string, opts *SenderOptions) (Sender, error) {
	if opts != nil && opts.Network == "udp" {
		return NewUDPSender(host, opts)
	}
	return NewTCPSender(host, opts)
}

func resolveSenderOptions(host string, opts *SenderOptions) (string, *SenderOptions, error) {
	if opts == nil {
		opts = DefaultSenderOptions()
	}
	opts.resolve()
	if len(host) == 0 {
		host = defaultHost
	}
	if len(opts.DefaultAppName) > 0 {
		if err := validateHeaderField("DefaultAppName", opts.DefaultAppName); err != nil {
			return "", nil, err
		}
	}
	return host, opts, nil
}

// prepare detaches m from the caller's memory and fills in the defaults.
func prepare(m Message, opts *SenderOptions) Message {
	m = m.Clone()
	if len(m.AppName) == 0 {
		m.AppName = opts.DefaultAppName
	}
	if len(m.Hostname) == 0 {
		m.Hostname = opts.DefaultHostname
	}
	return m
}

func defaultMessage(body string, opts *SenderOptions) Message {
	return NewMessage(body).
		WithFacility(*opts.DefaultFacility).
		WithSeverity(*opts.DefaultSeverity)
}

// validateHeaderField rejects header values containing a space, which would
// shift every later field of the message.
func validateHeaderField(name, v string) error {
	for i := 0; i < len(v); i++ {
		if v[i] == ' ' {
			return &Error{Kind: KindInvalidIdentifier, Op: name, Err: errors.New("must not contain spaces")}
		}
	}
	return nil
}
