package syslog

import (
	"bytes"
	"io"
	"strconv"
	"sync"
	"time"
)

const (
	sp       = ' '
	nilValue = "-"

	rfc3339Millis   = "2006-01-02T15:04:05.000Z"
	rfc3164Stamp      = "Jan 02 15:04:05"
	rfc3164StampSpace = time.Stamp // "Jan _2 15:04:05"
)

// EncoderPool defines a shared *Encoder pool, used to minimize heap
// allocations on the send path.
type EncoderPool struct {
	p sync.Pool
	*EncoderOptions
}

// NewEncoderPool creates a shared *Encoder pool whose Encoders produce the
// configured Format.
func NewEncoderPool(opts *EncoderOptions) *EncoderPool {
	if opts == nil {
		opts = DefaultEncoderOptions()
	} else {
		opts.resolve()
	}

	ep := &EncoderPool{EncoderOptions: opts}
	ep.p = sync.Pool{
		New: func() any {
			enc := newEncoder(opts)
			enc.p = ep
			return enc
		},
	}
	return ep
}

// Get returns an empty Encoder.
func (p *EncoderPool) Get() *Encoder {
	return p.p.Get().(*Encoder)
}

// Put resets an Encoder and returns it to the shared pool.
func (p *EncoderPool) Put(e *Encoder) {

	// drop if the buffer got too large
	if e.Buffer.Cap() > p.MaxBufferCap {
		return
	}

	e.Buffer.Reset()
	p.p.Put(e)
}

// Encoder renders syslog messages into its underlying bytes.Buffer. An
// Encoder is not safe for concurrent use; take one per goroutine from an
// EncoderPool.
type Encoder struct {
	*bytes.Buffer
	opts *EncoderOptions
	p    *EncoderPool
}

// NewEncoder returns a newly allocated Encoder that is not tied to a pool.
func NewEncoder(opts *EncoderOptions) *Encoder {
	if opts == nil {
		opts = DefaultEncoderOptions()
	} else {
		opts.resolve()
	}
	return newEncoder(opts)
}

// newEncoder expects opts to be resolved already. Pools share one options
// struct across goroutines, so nothing here may write to it.
func newEncoder(opts *EncoderOptions) *Encoder {
	return &Encoder{
		Buffer: bytes.NewBuffer(make([]byte, 0, opts.NewBufferCap)),
		opts:   opts,
	}
}

// Free returns the encoder to its pool after eagerly resetting it. It is a
// no-op for Encoders created with NewEncoder.
func (e *Encoder) Free() {
	if e.p != nil {
		e.p.Put(e)
	}
}

// Format returns the wire format the Encoder produces.
func (e *Encoder) Format() Format { return e.opts.Format }

// EncodeMessage appends m, rendered in the Encoder's Format, to the buffer.
// On error the buffer is left as it was before the call.
func (e *Encoder) EncodeMessage(m Message) error {
	return e.encode(m, e.opts.Format)
}

func (e *Encoder) encode(m Message, f Format) error {
	if !m.Facility.Valid() {
		return unknownEnumValue("EncodeMessage", "unknown facility code: %d", int(m.Facility))
	}
	if !m.Severity.Valid() {
		return unknownEnumValue("EncodeMessage", "unknown severity code: %d", int(m.Severity))
	}

	switch f {
	case RFC3164:
		e.encodeRFC3164(m)
	case RFC5424:
		e.encodeRFC5424(m)
	case RFC5425:
		e.encodeRFC5425(m)
	default:
		return unknownEnumValue("EncodeMessage", "unknown message format: %d", int(f))
	}
	return nil
}

// <PRI>1 TIMESTAMP HOSTNAME APP-NAME PROCID MSGID STRUCTURED-DATA [MSG]
func (e *Encoder) encodeRFC5424(m Message) {
	e.writePRI(m)
	e.WriteByte('1')
	e.WriteByte(sp)
	e.writeTime(m.Timestamp.UTC(), rfc3339Millis)
	e.WriteByte(sp)
	e.WriteString(e.hostname(m))
	e.WriteByte(sp)
	e.writeNillable(m.AppName)
	e.WriteByte(sp)
	e.writeNillable(m.ProcID)
	e.WriteByte(sp)
	e.writeNillable(m.MsgID)
	e.WriteByte(sp)
	e.writeStructuredData(m.sd)
	if m.Body != nil {
		e.WriteByte(sp)
		e.Write(m.Body)
	}
}

// <PRI>Mmm dd hh:mm:ss HOSTNAME APP-NAME[: MSG]
//
// Structured data, PROCID and MSGID have no representation in RFC 3164 and
// are dropped.
func (e *Encoder) encodeRFC3164(m Message) {
	layout := rfc3164Stamp
	if e.opts.SpacePadDay {
		layout = rfc3164StampSpace
	}
	e.writePRI(m)
	e.writeTime(m.Timestamp.In(e.opts.Location), layout)
	e.WriteByte(sp)
	e.WriteString(e.hostname(m))
	e.WriteByte(sp)
	e.writeNillable(m.AppName)
	if m.Body != nil {
		e.WriteString(": ")
		e.Write(m.Body)
	}
}

// MSG-LEN SP RFC5424-MSG, per RFC 6587 section 3.4.1.
func (e *Encoder) encodeRFC5425(m Message) {
	var inner *Encoder
	if e.p != nil {
		inner = e.p.Get()
		defer inner.Free()
	} else {
		inner = newEncoder(e.opts)
	}
	inner.encodeRFC5424(m)

	b := e.AvailableBuffer()
	b = strconv.AppendInt(b, int64(inner.Len()), 10)
	b = append(b, sp)
	e.Write(b)
	e.Write(inner.Bytes())
}

func (e *Encoder) writePRI(m Message) {
	b := e.AvailableBuffer()
	b = append(b, '<')
	b = strconv.AppendInt(b, int64(m.Priority()), 10)
	b = append(b, '>')
	e.Write(b)
}

// writeTime formats t with layout; the zero time means now.
func (e *Encoder) writeTime(t time.Time, layout string) {
	if t.IsZero() {
		t = time.Now().In(t.Location())
	}
	e.Write(t.AppendFormat(e.AvailableBuffer(), layout))
}

func (e *Encoder) hostname(m Message) string {
	if len(m.Hostname) > 0 {
		return m.Hostname
	}
	h, err := e.opts.Hostname.Get()
	if err != nil {
		InternalLogger().Warn().Err(err).Msg("failed to resolve local hostname; using nil value")
		return nilValue
	}
	return h
}

func (e *Encoder) writeNillable(s string) {
	if len(s) == 0 {
		e.WriteString(nilValue)
		return
	}
	e.WriteString(s)
}

func (e *Encoder) writeStructuredData(sd []SDElement) {
	if len(sd) == 0 {
		e.WriteString(nilValue)
		return
	}
	for _, el := range sd {
		e.WriteByte('[')
		e.WriteString(el.id)
		for _, p := range el.params {
			e.WriteByte(sp)
			e.WriteString(p.Name)
			e.WriteString(`="`)
			e.writeEscaped(p.Value)
			e.WriteByte('"')
		}
		e.WriteByte(']')
	}
}

// writeEscaped backslash-escapes '"', '\' and ']' and leaves every other byte,
// including non-ASCII, untouched.
func (e *Encoder) writeEscaped(v string) {
	start := 0
	for i := 0; i < len(v); i++ {
		switch v[i] {
		case '"', '\\', ']':
			e.WriteString(v[start:i])
			e.WriteByte('\\')
			e.WriteByte(v[i])
			start = i + 1
		}
	}
	e.WriteString(v[start:])
}

// one shared pool per format for the package level helpers
var defaultPools = func() (pools [3]*EncoderPool) {
	for f := RFC3164; f <= RFC5425; f++ {
		opts := DefaultEncoderOptions()
		opts.Format = f
		pools[f] = NewEncoderPool(opts)
	}
	return pools
}()

// Marshal renders m in format f using the default encoder options.
func Marshal(m Message, f Format) ([]byte, error) {
	if !f.Valid() {
		return nil, unknownEnumValue("Marshal", "unknown message format: %d", int(f))
	}
	enc := defaultPools[f].Get()
	defer enc.Free()
	if err := enc.EncodeMessage(m); err != nil {
		return nil, err
	}
	return append([]byte(nil), enc.Bytes()...), nil
}

// Encode renders m in format f using the default encoder options and writes
// it to w. The bytes written are identical to those returned by Marshal.
func Encode(w io.Writer, m Message, f Format) error {
	if !f.Valid() {
		return unknownEnumValue("Encode", "unknown message format: %d", int(f))
	}
	enc := defaultPools[f].Get()
	defer enc.Free()
	if err := enc.EncodeMessage(m); err != nil {
		return err
	}
	_, err := w.Write(enc.Bytes())
	return err
}
