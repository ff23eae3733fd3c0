package syslog

import (
	"strconv"
	"strings"
)

// Severity is the syslog severity as defined in RFC 5424.
type Severity int

const (
	SeverityEmergency     Severity = iota // system is unusable
	SeverityAlert                         // action must be taken immediately
	SeverityCritical                      // critical conditions
	SeverityError                         // error conditions
	SeverityWarning                       // warning conditions
	SeverityNotice                        // normal but significant condition
	SeverityInformational                 // informational messages
	SeverityDebug                         // debug-level messages
)

var severityLabels = [...]string{
	"EMERGENCY", "ALERT", "CRITICAL", "ERROR", "WARNING", "NOTICE", "INFORMATIONAL", "DEBUG",
}

// Code returns the numerical code of the severity.
func (s Severity) Code() int { return int(s) }

// Valid reports whether s is one of the 8 defined severities.
func (s Severity) Valid() bool { return s >= SeverityEmergency && s <= SeverityDebug }

func (s Severity) String() string {
	if !s.Valid() {
		return "Severity(" + itoa(int(s)) + ")"
	}
	return severityLabels[s]
}

// SeverityFromCode looks up a severity by numerical code.
func SeverityFromCode(code int) (Severity, error) {
	s := Severity(code)
	if !s.Valid() {
		return 0, unknownEnumValue("SeverityFromCode", "unknown severity code: %d", code)
	}
	return s, nil
}

// ParseSeverity looks up a severity by label. Matching is case-insensitive.
func ParseSeverity(label string) (Severity, error) {
	l := strings.ToUpper(strings.TrimSpace(label))
	for i, s := range severityLabels {
		if s == l {
			return Severity(i), nil
		}
	}
	return 0, unknownEnumValue("ParseSeverity", "unknown severity label: %q", label)
}

func itoa(i int) string { return strconv.Itoa(i) }
