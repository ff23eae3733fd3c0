package syslog

import (
	"context"
	"crypto/tls"
	"net"
	"net/netip"
	"time"
)

// SenderOptions are used to customize the TCPSender and UDPSender.
//
// # Invalid options are coerced
//
// NB: The struct pointer options approach is used to be consistent with the
// options used for the Handler, which uses the struct pointer approach to be
// consistent with the `HandlerOptions` used by log/slog.
type SenderOptions struct {

	// Network is the transport used to reach the syslog server: "tcp", "tls"
	// or "udp". It selects the sender built by NewSender. The default is
	// "tcp".
	Network string

	// Port of the syslog server. The default is 514.
	Port int

	// Format is the wire format of the sent messages. The default is RFC3164.
	Format Format

	// Encoding customizes the encoder. Its Format is overridden by Format.
	Encoding *EncoderOptions

	// DialTimeout bounds DNS resolution and connection establishment,
	// including the TLS handshake. The default is 500ms.
	DialTimeout time.Duration

	// WriteTimeout bounds each write of a message to the server. If
	// WriteTimeout < 0, then no deadline is set. The default is 10 seconds.
	WriteTimeout time.Duration

	// MaxRetryCount is the number of times a failed send is retried, over a
	// fresh connection, before the error is returned. If MaxRetryCount < 0,
	// sends are not retried. The default is 2, for 3 attempts in total.
	MaxRetryCount int

	// RetryBackoffLimit enables an exponential pause between send retries,
	// capped at this duration. The default is 0: retry immediately.
	RetryBackoffLimit time.Duration

	// AddressTTL is how long a resolved server address is cached. A negative
	// value resolves on every send. The default is 30 seconds.
	AddressTTL time.Duration

	// Postfix terminates every message sent over a stream connection. The
	// default is "\r\n" (RFC 6587 non-transparent framing).
	Postfix string

	// TLSConfig is used when Network is "tls". When nil, the system roots
	// are used and ServerName is set to the server host.
	TLSConfig *tls.Config

	// InsecureSkipVerify controls whether a client verifies the server's
	// certificate chain and host name when using TLS. Ignored if TLSConfig is
	// set.
	InsecureSkipVerify bool

	// ProxyAddr is the host:port of a SOCKS5 proxy that stream connections
	// are dialed through. Empty means dial directly.
	ProxyAddr string

	// ProxyUser and ProxyPassword authenticate to the SOCKS5 proxy.
	ProxyUser     string
	ProxyPassword string

	// EagerDial makes NewTCPSender connect before returning, trying up to
	// MaxEagerDialTries times. By default the first Send connects.
	EagerDial bool

	// MaxEagerDialTries limits the connection attempts made by Connect. If
	// the value is < 0, Connect does not return until it connects or its
	// context ends. The default is 10.
	MaxEagerDialTries int

	// DefaultFacility and DefaultSeverity are used by SendString. The
	// defaults are USER and INFORMATIONAL.
	DefaultFacility *Facility
	DefaultSeverity *Severity

	// DefaultAppName and DefaultHostname fill in messages that leave AppName
	// or Hostname empty.
	DefaultAppName  string
	DefaultHostname string

	// Resolver maps the server host to an address. The default uses
	// net.DefaultResolver and prefers IPv4.
	Resolver func(ctx context.Context, host string) (netip.Addr, error)

	// Dial opens the raw connection to addr. The default uses a net.Dialer
	// with keep-alive enabled, or the SOCKS5 proxy when ProxyAddr is set.
	Dial func(ctx context.Context, network, addr string) (net.Conn, error)

	// Verbose controls whether debug logs are written to the internal logger.
	Verbose bool
}

const (
	defaultHost           = "localhost"
	defaultPort           = 514
	defaultNetwork        = "tcp"
	defaultDialTimeout    = time.Millisecond * 500
	defaultWriteTimeout   = time.Second * 10
	defaultMaxRetryCount  = 2
	defaultAddressTTL     = time.Second * 30
	defaultPostfix        = "\r\n"
	defaultEagerDialTries = 10
	defaultFacility       = FacilityUser
	defaultSeverity       = SeverityInformational
)

// DefaultSenderOptions returns *SenderOptions with all default values.
func DefaultSenderOptions() *SenderOptions {
	f, s := defaultFacility, defaultSeverity
	return &SenderOptions{
		Network:           defaultNetwork,
		Port:              defaultPort,
		Format:            defaultFormat,
		DialTimeout:       defaultDialTimeout,
		WriteTimeout:      defaultWriteTimeout,
		MaxRetryCount:     defaultMaxRetryCount,
		AddressTTL:        defaultAddressTTL,
		Postfix:           defaultPostfix,
		MaxEagerDialTries: defaultEagerDialTries,
		DefaultFacility:   &f,
		DefaultSeverity:   &s,
	}
}

// resolve ensures that all options have valid values.
func (o *SenderOptions) resolve() {

	// only [tcp|tls|udp]
	if o.Network != "tcp" && o.Network != "tls" && o.Network != "udp" {
		o.Network = defaultNetwork
	}

	// constrain to valid range
	if o.Port < 1 || o.Port > 65535 {
		o.Port = defaultPort
	}

	if !o.Format.Valid() {
		o.Format = defaultFormat
	}

	// must be positive
	if o.DialTimeout < 1 {
		o.DialTimeout = defaultDialTimeout
	}

	// can be negative (no deadline) or positive, but not 0
	if o.WriteTimeout == 0 {
		o.WriteTimeout = defaultWriteTimeout
	}

	// negative disables retries
	if o.MaxRetryCount == 0 {
		o.MaxRetryCount = defaultMaxRetryCount
	} else if o.MaxRetryCount < 0 {
		o.MaxRetryCount = 0
	}

	if o.RetryBackoffLimit < 0 {
		o.RetryBackoffLimit = 0
	}

	// can be negative (always resolve) or positive, but not 0
	if o.AddressTTL == 0 {
		o.AddressTTL = defaultAddressTTL
	}

	if len(o.Postfix) == 0 {
		o.Postfix = defaultPostfix
	}

	// can be negative (infinity) or positive, but not 0
	if o.MaxEagerDialTries == 0 {
		o.MaxEagerDialTries = defaultEagerDialTries
	}

	if o.DefaultFacility == nil || !o.DefaultFacility.Valid() {
		f := defaultFacility
		o.DefaultFacility = &f
	}
	if o.DefaultSeverity == nil || !o.DefaultSeverity.Valid() {
		s := defaultSeverity
		o.DefaultSeverity = &s
	}
}

// encoderOptions returns a copy of the Encoding options with the sender's
// Format applied.
func (o *SenderOptions) encoderOptions() *EncoderOptions {
	var eo EncoderOptions
	if o.Encoding != nil {
		eo = *o.Encoding
	}
	eo.Format = o.Format
	eo.resolve()
	return &eo
}
