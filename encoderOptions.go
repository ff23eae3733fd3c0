package syslog

import "time"

// EncoderOptions are used to customize the Encoders and the Encoder pool.
//
// NB: The struct pointer options approach is used to be consistent with the
// options used for the Handler, which uses the struct pointer approach to be
// consistent with the `HandlerOptions` used by log/slog.
type EncoderOptions struct {
	// Format is the wire format produced by every Encoder from one shared
	// EncoderPool. The default is RFC3164.
	Format Format

	// NewBufferCap sets the capacity, in bytes, for newly created Encoder
	// buffers. The minimum value is 64 bytes. The default is 1KiB (1<<10).
	NewBufferCap int

	// MaxBufferCap sets the maximum buffer capacity, in bytes, beyond which an
	// Encoder will not be returned to the shared Encoder pool, to prevent rare,
	// unusually large buffers from staying resident in memory. The minimum
	// value is the `NewBufferCap`. The default is 8KiB (1<<13).
	MaxBufferCap int

	// Location is the time zone of RFC 3164 timestamps, which carry no zone
	// designator. RFC 5424 timestamps are always UTC. The default is
	// time.Local.
	Location *time.Location

	// Hostname supplies the HOSTNAME header for messages that do not set one.
	// The default is a process-wide cache of os.Hostname with a 10s TTL.
	Hostname *TTLCache[string]

	// SpacePadDay renders the RFC 3164 day of month space padded ("Dec  5"),
	// as in the BSD syslog timestamp, instead of zero padded ("Dec 05").
	SpacePadDay bool
}

const (
	minBufferCap        = 64
	defaultNewBufferCap = 1024
	defaultMaxBufferCap = 8192
	defaultFormat       = RFC3164
)

// DefaultEncoderOptions returns *EncoderOptions with all default values.
func DefaultEncoderOptions() *EncoderOptions {
	return &EncoderOptions{
		Format:       defaultFormat,
		NewBufferCap: defaultNewBufferCap,
		MaxBufferCap: defaultMaxBufferCap,
		Location:     time.Local,
		Hostname:     localHostname,
	}
}

// resolve ensures that all options have valid values.
func (o *EncoderOptions) resolve() {
	if !o.Format.Valid() {
		o.Format = defaultFormat
	}
	if o.NewBufferCap == 0 {
		o.NewBufferCap = defaultNewBufferCap
	}
	o.NewBufferCap = max(o.NewBufferCap, minBufferCap)
	if o.MaxBufferCap == 0 {
		o.MaxBufferCap = defaultMaxBufferCap
	}
	o.MaxBufferCap = max(o.NewBufferCap, o.MaxBufferCap)
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Hostname == nil {
		o.Hostname = localHostname
	}
}
