package syslog

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

type ccKey struct{}

// ContextKey is used to extract a log value from context.Context. The value
// must be be `slog.Attr`.
//
//		Example:
//	 	ctx := context.WithValue(ctx, syslog.ContextKey,
//	 		slog.Group("req",
//	 			slog.String("method", r.Method),
//	 			slog.String("url", r.URL.String()),
//	 		)
//	 	)
//
// These attrs are added ahead of the record attrs, outside of any group.
var ContextKey *ccKey = &ccKey{}

// Sink is the sending side of a Handler. TCPSender and UDPSender are Sinks.
type Sink interface {
	Send(Message) error
}

// Handler is an adapter that turns Go structured logs into syslog messages.
// The record message becomes the body, the level maps to the severity, and
// the attributes become the params of a single structured data element.
//
//	// Example of basic usage
//	h, err := syslog.NewHandler(syslogHost, nil)
//	if err != nil {
//	   log.Fatalln(err)
//	}
//
//	logger := slog.New(h)
//	slog.SetDefault(logger)
//
//	slog.Info("unrecognized user", "user_id", user_id)
type Handler struct {
	*HandlerOptions
	sink Sink

	// attrs added with WithAttrs, already flattened and validated
	params []SDParam

	// dotted prefix of the groups opened with WithGroup
	prefix string
}

// NewHandler creates a Handler that sends to the syslog server at host using
// a sender built from opts.Sender.
func NewHandler(host string, opts *HandlerOptions) (*Handler, error) {
	if opts == nil {
		opts = DefaultHandlerOptions()
	}
	s, err := NewSender(host, opts.Sender)
	if err != nil {
		return nil, fmt.Errorf("failed to create syslog sender: %w", err)
	}
	return NewHandlerCustom(s, opts), nil
}

// NewHandlerCustom creates a Handler that sends through sink.
func NewHandlerCustom(sink Sink, opts *HandlerOptions) *Handler {
	if opts == nil {
		opts = DefaultHandlerOptions()
	} else {
		opts.resolve()
	}
	return &Handler{
		HandlerOptions: opts,
		sink:           sink,
	}
}

// Close closes the underlying sink, if it can be closed.
func (h *Handler) Close() error {
	h.debug("closing the logging sink")
	if c, ok := h.sink.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func (h *Handler) debug(format string, args ...any) {
	if !h.Verbose {
		return
	}
	InternalLogger().Debug().Str("component", "handler").Msgf(format, args...)
}

// SeverityForLevel maps a slog level to a syslog severity.
func SeverityForLevel(l slog.Level) Severity {
	switch {
	case l >= slog.LevelError:
		return SeverityError
	case l >= slog.LevelWarn:
		return SeverityWarning
	case l >= slog.LevelInfo:
		return SeverityInformational
	default:
		return SeverityDebug
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.Level.Level()
}

// Handle sends the Record as one syslog message. A zero record time is
// replaced by the current time, since syslog headers always carry one.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	t := r.Time
	if t.IsZero() {
		t = time.Now()
	}

	m := NewMessage(r.Message).
		WithFacility(*h.Facility).
		WithSeverity(SeverityForLevel(r.Level)).
		WithTimestamp(t).
		WithAppName(h.AppName).
		WithProcID(h.ProcID)

	params := make([]SDParam, 0, len(h.params)+r.NumAttrs()+2)

	if h.AddSource && r.PC != 0 {
		fs := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := fs.Next()
		params = append(params, SDParam{Name: slog.SourceKey, Value: f.File + ":" + strconv.Itoa(f.Line)})
	}

	if ctxAttr, ok := ctx.Value(ContextKey).(slog.Attr); ok {
		params = h.appendAttr(params, "", ctxAttr)
	}

	params = append(params, h.params...)
	r.Attrs(func(a slog.Attr) bool {
		params = h.appendAttr(params, h.prefix, a)
		return true
	})

	if len(params) > 0 {
		if h.SDID == nilValue {
			m = m.WithMsg(appendKeyValues(r.Message, params))
		} else {
			// names were validated as they were collected
			m = m.WithSDElement(SDElement{id: h.SDID, params: params})
		}
	}

	return h.sink.Send(m)
}

func appendKeyValues(msg string, params []SDParam) string {
	var b strings.Builder
	b.WriteString(msg)
	for _, p := range params {
		b.WriteByte(sp)
		b.WriteString(p.Name)
		b.WriteByte('=')
		if strings.ContainsAny(p.Value, " \"") {
			b.WriteString(strconv.Quote(p.Value))
		} else {
			b.WriteString(p.Value)
		}
	}
	return b.String()
}

// appendAttr flattens attr into params, joining group keys with dots.
func (h *Handler) appendAttr(params []SDParam, prefix string, attr slog.Attr) []SDParam {

	// rule: must first resolve, and then ignore if empty
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return params
	}

	k, v := attr.Key, attr.Value

	if v.Kind() == slog.KindGroup {
		gAttrs := v.Group()

		// rule: inline attrs if key is empty
		if len(k) > 0 {
			prefix = prefix + k + "."
		}
		for _, a := range gAttrs {
			params = h.appendAttr(params, prefix, a)
		}
		return params
	}

	// rule: ignore non-group attrs with empty keys
	if len(k) == 0 {
		return params
	}

	name := prefix + k
	if err := validateSDName("PARAM-NAME", name); err != nil {
		InternalLogger().Warn().Err(err).Msg("skipping log attribute")
		return params
	}
	return append(params, SDParam{Name: name, Value: h.formatValue(v)})
}

func (h *Handler) formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindTime:
		return v.Time().Format(h.TimeFormat)
	case slog.KindAny:
		switch x := v.Any().(type) {
		case error:
			return x.Error()
		case fmt.Stringer:
			return x.String()
		case []byte:
			return string(x)
		}
		b, err := json.Marshal(v.Any())
		if err != nil {
			return fmt.Sprintf("%+v", v.Any())
		}
		return string(b)
	default:
		// bool, duration, numbers
		return v.String()
	}
}

// WithAttrs returns a new Handler whose attributes consist of both the
// receiver's attributes and the arguments.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {

	// rule: skip if no attrs
	if len(attrs) == 0 {
		return h
	}

	h2 := *h
	h2.params = slices.Clip(h.params)
	for _, a := range attrs {
		h2.params = h2.appendAttr(h2.params, h.prefix, a)
	}
	return &h2
}

// WithGroup returns a new Handler that prefixes the keys of later attributes
// with name and a dot. If the name is empty, WithGroup returns the receiver.
func (h *Handler) WithGroup(name string) slog.Handler {

	// rule: ignore if name is empty
	if len(name) == 0 {
		return h
	}

	h2 := *h
	h2.prefix = h.prefix + name + "."
	return &h2
}
