package syslog

import (
	"strings"
)

// Format selects the wire format produced by the encoder.
type Format int

const (
	// RFC3164 is the BSD syslog format:
	//   <PRI>Mmm dd hh:mm:ss HOSTNAME APP-NAME: MSG
	RFC3164 Format = iota

	// RFC5424 is the IETF syslog format:
	//   <PRI>1 TIMESTAMP HOSTNAME APP-NAME PROCID MSGID STRUCTURED-DATA MSG
	RFC5424

	// RFC5425 is RFC5424 with octet-counting framing:
	//   MSG-LEN SP RFC5424-MSG
	RFC5425
)

var formatNames = [...]string{"RFC3164", "RFC5424", "RFC5425"}

func (f Format) Valid() bool { return f >= RFC3164 && f <= RFC5425 }

func (f Format) String() string {
	if !f.Valid() {
		return "Format(" + itoa(int(f)) + ")"
	}
	return formatNames[f]
}

// ParseFormat accepts "rfc3164", "RFC_5424", "5425" and similar spellings.
func ParseFormat(s string) (Format, error) {
	n := strings.ToUpper(strings.TrimSpace(s))
	n = strings.ReplaceAll(n, "_", "")
	n = strings.ReplaceAll(n, "-", "")
	n = strings.TrimPrefix(n, "RFC")
	switch n {
	case "3164":
		return RFC3164, nil
	case "5424":
		return RFC5424, nil
	case "5425":
		return RFC5425, nil
	}
	return 0, unknownEnumValue("ParseFormat", "unknown message format: %q", s)
}
