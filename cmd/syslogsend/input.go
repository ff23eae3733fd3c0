package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/bitdabbler/syslog"
)

// record is one structured input record, read from JSON or msgpack.
//
//	{"time": "2013-12-05T10:30:05Z", "severity": "warning", "message": "disk full",
//	 "sd": {"disk@32473": {"mount": "/var"}}}
type record struct {
	Time     recordTime                   `json:"time" msgpack:"time"`
	Facility string                       `json:"facility" msgpack:"facility"`
	Severity string                       `json:"severity" msgpack:"severity"`
	Hostname string                       `json:"hostname" msgpack:"hostname"`
	AppName  string                       `json:"app_name" msgpack:"app_name"`
	ProcID   string                       `json:"proc_id" msgpack:"proc_id"`
	MsgID    string                       `json:"msg_id" msgpack:"msg_id"`
	Message  *string                      `json:"message" msgpack:"message"`
	SD       map[string]map[string]string `json:"sd" msgpack:"sd"`
}

// defaults fill the header fields a record leaves empty.
type defaults struct {
	Facility syslog.Facility
	Severity syslog.Severity
	Hostname string
	AppName  string
	ProcID   string
	MsgID    string
}

func (d defaults) message(body string) syslog.Message {
	return syslog.NewMessage(body).
		WithFacility(d.Facility).
		WithSeverity(d.Severity).
		WithHostname(d.Hostname).
		WithAppName(d.AppName).
		WithProcID(d.ProcID).
		WithMsgID(d.MsgID)
}

// toMessage applies r over the defaults. SD-IDs and param names are sorted,
// so the output does not depend on map iteration order.
func (r *record) toMessage(d defaults) (syslog.Message, error) {
	m := d.message("")
	if r.Message == nil {
		m = m.WithoutBody()
	} else {
		m = m.WithMsg(*r.Message)
	}

	if len(r.Facility) > 0 {
		f, err := syslog.ParseFacility(r.Facility)
		if err != nil {
			return m, err
		}
		m = m.WithFacility(f)
	}
	if len(r.Severity) > 0 {
		s, err := syslog.ParseSeverity(r.Severity)
		if err != nil {
			return m, err
		}
		m = m.WithSeverity(s)
	}
	if !time.Time(r.Time).IsZero() {
		m = m.WithTimestamp(time.Time(r.Time))
	}
	if len(r.Hostname) > 0 {
		m = m.WithHostname(r.Hostname)
	}
	if len(r.AppName) > 0 {
		m = m.WithAppName(r.AppName)
	}
	if len(r.ProcID) > 0 {
		m = m.WithProcID(r.ProcID)
	}
	if len(r.MsgID) > 0 {
		m = m.WithMsgID(r.MsgID)
	}

	ids := make([]string, 0, len(r.SD))
	for id := range r.SD {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		names := make([]string, 0, len(r.SD[id]))
		for name := range r.SD[id] {
			names = append(names, name)
		}
		sort.Strings(names)

		params := make([]syslog.SDParam, 0, len(names))
		for _, name := range names {
			params = append(params, syslog.SDParam{Name: name, Value: r.SD[id][name]})
		}
		el, err := syslog.NewSDElement(id, params...)
		if err != nil {
			return m, err
		}
		m = m.WithSDElement(el)
	}
	return m, nil
}

// recordTime accepts an RFC 3339 string, Unix seconds, a msgpack timestamp,
// or a Fluent EventTime.
type recordTime time.Time

func (t *recordTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		return nil
	case len(b) > 0 && b[0] == '"':
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return fmt.Errorf("failed to decode time field: %w", err)
		}
		return t.parse(s)
	default:
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return fmt.Errorf("failed to decode time field: %w", err)
		}
		*t = recordTime(unixFloat(f))
		return nil
	}
}

func (t *recordTime) DecodeMsgpack(dec *msgpack.Decoder) error {
	var raw msgpack.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("failed to decode time field: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}

	switch c := raw[0]; {
	case c == msgpcode.Nil:
		return nil
	case c == msgpcode.FixExt8 && len(raw) > 1 && raw[1] == eventTimeExtType:
		var et EventTime
		if err := et.decode(raw); err != nil {
			return err
		}
		*t = recordTime(et)
		return nil
	case c == msgpcode.FixExt4 || c == msgpcode.FixExt8 || c == msgpcode.Ext8:
		var tm time.Time
		if err := msgpack.Unmarshal(raw, &tm); err != nil {
			return fmt.Errorf("failed to decode time field: %w", err)
		}
		*t = recordTime(tm)
		return nil
	case msgpcode.IsString(c):
		var s string
		if err := msgpack.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("failed to decode time field: %w", err)
		}
		return t.parse(s)
	case c == msgpcode.Float || c == msgpcode.Double:
		var f float64
		if err := msgpack.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("failed to decode time field: %w", err)
		}
		*t = recordTime(unixFloat(f))
		return nil
	default:
		var secs int64
		if err := msgpack.Unmarshal(raw, &secs); err != nil {
			return fmt.Errorf("failed to decode time field: %w", err)
		}
		*t = recordTime(time.Unix(secs, 0))
		return nil
	}
}

func (t *recordTime) parse(s string) error {
	if len(s) == 0 {
		return nil
	}
	tm, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("failed to decode time field: %w", err)
	}
	*t = recordTime(tm)
	return nil
}

func unixFloat(f float64) time.Time {
	secs := int64(f)
	return time.Unix(secs, int64((f-float64(secs))*1e9))
}

// errBrokenStream marks read errors after which the input cannot be resumed.
var errBrokenStream = errors.New("unreadable input")

// reader yields one Message per input record, and io.EOF at the end.
type reader interface {
	Next() (syslog.Message, error)
}

// newReader returns the reader for the input kind: text, json or msgpack.
func newReader(kind string, r io.Reader, d defaults) (reader, error) {
	switch kind {
	case "text":
		return &textReader{s: bufio.NewScanner(r), d: d}, nil
	case "json":
		return &jsonReader{dec: json.NewDecoder(r), d: d}, nil
	case "msgpack":
		return &msgpackReader{dec: msgpack.NewDecoder(r), d: d}, nil
	}
	return nil, fmt.Errorf("unsupported input format: %q (want text, json or msgpack)", kind)
}

func newLineScanner(s string) *bufio.Scanner {
	return bufio.NewScanner(strings.NewReader(s))
}

// textReader sends each non-empty line as a message body.
type textReader struct {
	s *bufio.Scanner
	d defaults
}

func (r *textReader) Next() (syslog.Message, error) {
	for r.s.Scan() {
		if line := r.s.Text(); len(line) > 0 {
			return r.d.message(line), nil
		}
	}
	if err := r.s.Err(); err != nil {
		return syslog.Message{}, fmt.Errorf("%w: %w", errBrokenStream, err)
	}
	return syslog.Message{}, io.EOF
}

type jsonReader struct {
	dec *json.Decoder
	d   defaults
}

func (r *jsonReader) Next() (syslog.Message, error) {
	var rec record
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return syslog.Message{}, io.EOF
		}
		return syslog.Message{}, fmt.Errorf("%w: failed to decode JSON record: %w", errBrokenStream, err)
	}
	return rec.toMessage(r.d)
}

type msgpackReader struct {
	dec *msgpack.Decoder
	d   defaults
}

func (r *msgpackReader) Next() (syslog.Message, error) {
	var rec record
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return syslog.Message{}, io.EOF
		}
		return syslog.Message{}, fmt.Errorf("%w: failed to decode msgpack record: %w", errBrokenStream, err)
	}
	return rec.toMessage(r.d)
}
