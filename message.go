package syslog

import (
	"time"
)

// Message is one syslog event. It is a value: the With* builder methods
// return modified copies and never touch the receiver, so a Message can be
// handed to a Sender while the caller keeps building from the original.
//
// Empty string header fields are absent and render as the nil value "-",
// except Hostname, which falls back to the local machine's name. A zero
// Timestamp means "now", evaluated at encode time. A nil Body is absent; an
// empty non-nil Body renders as an empty MSG.
type Message struct {
	Facility  Facility
	Severity  Severity
	Timestamp time.Time
	Hostname  string
	AppName   string
	ProcID    string
	MsgID     string
	Body      []byte

	// ordered by first insertion; see WithSDElement
	sd []SDElement
}

// NewMessage returns a user-level informational message with the given body.
func NewMessage(body string) Message {
	return Message{
		Facility: FacilityUser,
		Severity: SeverityInformational,
		Body:     []byte(body),
	}
}

func (m Message) WithFacility(f Facility) Message { m.Facility = f; return m }

func (m Message) WithSeverity(s Severity) Message { m.Severity = s; return m }

func (m Message) WithTimestamp(t time.Time) Message { m.Timestamp = t; return m }

func (m Message) WithHostname(h string) Message { m.Hostname = h; return m }

func (m Message) WithAppName(a string) Message { m.AppName = a; return m }

func (m Message) WithProcID(p string) Message { m.ProcID = p; return m }

func (m Message) WithMsgID(id string) Message { m.MsgID = id; return m }

// WithBody copies body into the message.
func (m Message) WithBody(body []byte) Message {
	if body == nil {
		m.Body = nil
		return m
	}
	m.Body = append(make([]byte, 0, len(body)), body...)
	return m
}

// WithMsg sets the body from a string.
func (m Message) WithMsg(msg string) Message {
	m.Body = []byte(msg)
	return m
}

// WithoutBody removes the body, so the MSG part is omitted entirely.
func (m Message) WithoutBody() Message { m.Body = nil; return m }

// WithSDElement adds e to the structured data. Structured data is a set keyed
// by SD-ID: adding an element whose ID is already present overwrites the
// earlier element, which keeps its position in the rendering order. The zero
// SDElement, which never passed validation, is ignored.
func (m Message) WithSDElement(e SDElement) Message {
	if len(e.id) == 0 {
		return m
	}
	sd := make([]SDElement, len(m.sd), len(m.sd)+1)
	copy(sd, m.sd)
	for i := range sd {
		if sd[i].id == e.id {
			sd[i] = e
			m.sd = sd
			return m
		}
	}
	m.sd = append(sd, e)
	return m
}

// SDElements returns the structured data elements in rendering order.
func (m Message) SDElements() []SDElement {
	return append([]SDElement(nil), m.sd...)
}

// SDElement returns the element with the given SD-ID, if present.
func (m Message) SDElement(id string) (SDElement, bool) {
	for _, e := range m.sd {
		if e.id == id {
			return e, true
		}
	}
	return SDElement{}, false
}

// Clone returns a deep copy that shares no memory with m.
func (m Message) Clone() Message {
	m2 := m
	if m.Body != nil {
		m2.Body = append(make([]byte, 0, len(m.Body)), m.Body...)
	}
	if m.sd != nil {
		m2.sd = make([]SDElement, len(m.sd))
		for i, e := range m.sd {
			m2.sd[i] = SDElement{id: e.id, params: append([]SDParam(nil), e.params...)}
		}
	}
	return m2
}

// Priority returns the PRI value of the message.
func (m Message) Priority() int { return Priority(m.Facility, m.Severity) }
