package syslog

import (
	"log/slog"
	"time"
)

// HandlerOptions are used to customize the syslog slog.Handler.
//
// NB: The struct pointer options approach is used to be consistent with the
// approach used in the standard library for `HandlerOptions`.
type HandlerOptions struct {

	// Level reports the minimum record level that will be logged. The handler
	// discards records with lower levels. If Level is nil, the handler assumes
	// LevelInfo. The handler calls Level.Level for each record processed; to
	// adjust the minimum level dynamically, use a LevelVar.
	Level slog.Leveler

	// TimeFormat controls how time values inside log attributes are rendered.
	// It does not change the timestamp in the syslog header. The default is
	// time.RFC3339Nano.
	TimeFormat string

	// AddSource causes the handler to compute the source code position of the
	// log statement and add a SourceKey attribute to the output.
	AddSource bool

	// Facility of the sent messages. The default is USER.
	Facility *Facility

	// AppName and ProcID fill the matching header fields of every message.
	AppName string
	ProcID  string

	// SDID is the SD-ID of the structured data element that carries the
	// record attributes. If SDID is "-", attributes are appended to the body
	// as key=value pairs instead. The default is "slog@32473".
	SDID string

	// Sender configures the sender built by NewHandler. It is ignored by
	// NewHandlerCustom.
	Sender *SenderOptions

	// Verbose controls whether debug logs are written to the internal logger.
	Verbose bool
}

const (
	defaultTimeFormat = time.RFC3339Nano
	defaultSDID       = "slog@32473"
)

// DefaultHandlerOptions returns *HandlerOptions with all default values.
func DefaultHandlerOptions() *HandlerOptions {
	f := defaultFacility
	return &HandlerOptions{
		Level:      slog.LevelInfo,
		TimeFormat: defaultTimeFormat,
		Facility:   &f,
		SDID:       defaultSDID,
	}
}

// resolve ensures that all options have valid values.
func (o *HandlerOptions) resolve() {

	// set default log level if not provided
	if o.Level == nil {
		o.Level = slog.LevelInfo
	}

	// set time format if missing, otherwise validate user provided one
	if len(o.TimeFormat) == 0 {
		o.TimeFormat = defaultTimeFormat
	} else {
		s := time.Now().Format(o.TimeFormat)
		if _, err := time.Parse(o.TimeFormat, s); err != nil {
			InternalLogger().Warn().Err(err).Str("format", o.TimeFormat).
				Msg("HandlerOptions.TimeFormat is invalid; using default")
			o.TimeFormat = defaultTimeFormat
		}
	}

	if o.Facility == nil || !o.Facility.Valid() {
		f := defaultFacility
		o.Facility = &f
	}

	if len(o.SDID) == 0 {
		o.SDID = defaultSDID
	} else if o.SDID != nilValue {
		if err := validateSDID(o.SDID); err != nil {
			InternalLogger().Warn().Err(err).Msg("HandlerOptions.SDID is invalid; using default")
			o.SDID = defaultSDID
		}
	}
}
