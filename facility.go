package syslog

import (
	"strings"
)

// Facility is the syslog facility as defined in RFC 5424. Labels follow
// RFC 5427.
type Facility int

const (
	FacilityKern     Facility = iota // kernel messages
	FacilityUser                     // user-level messages
	FacilityMail                     // mail system
	FacilityDaemon                   // system daemons
	FacilityAuth                     // security/authorization messages
	FacilitySyslog                   // messages generated internally by syslogd
	FacilityLPR                      // line printer subsystem
	FacilityNews                     // network news subsystem
	FacilityUUCP                     // UUCP subsystem
	FacilityCron                     // clock daemon
	FacilityAuthPriv                 // security/authorization messages
	FacilityFTP                      // ftp daemon
	FacilityNTP                      // NTP subsystem
	FacilityAudit                    // log audit
	FacilityAlert                    // log alert
	FacilityClock                    // clock daemon
	FacilityLocal0                   // reserved for local use
	FacilityLocal1
	FacilityLocal2
	FacilityLocal3
	FacilityLocal4
	FacilityLocal5
	FacilityLocal6
	FacilityLocal7
)

var facilityLabels = [...]string{
	"KERN", "USER", "MAIL", "DAEMON", "AUTH", "SYSLOG", "LPR", "NEWS",
	"UUCP", "CRON", "AUTHPRIV", "FTP", "NTP", "AUDIT", "ALERT", "CLOCK",
	"LOCAL0", "LOCAL1", "LOCAL2", "LOCAL3", "LOCAL4", "LOCAL5", "LOCAL6", "LOCAL7",
}

// Code returns the numerical code of the facility.
func (f Facility) Code() int { return int(f) }

// Valid reports whether f is one of the 24 defined facilities.
func (f Facility) Valid() bool { return f >= FacilityKern && f <= FacilityLocal7 }

// String returns the RFC 5427 label, e.g. "USER".
func (f Facility) String() string {
	if !f.Valid() {
		return "Facility(" + itoa(int(f)) + ")"
	}
	return facilityLabels[f]
}

// FacilityFromCode looks up a facility by numerical code.
func FacilityFromCode(code int) (Facility, error) {
	f := Facility(code)
	if !f.Valid() {
		return 0, unknownEnumValue("FacilityFromCode", "unknown facility code: %d", code)
	}
	return f, nil
}

// ParseFacility looks up a facility by label. Matching is case-insensitive.
func ParseFacility(label string) (Facility, error) {
	l := strings.ToUpper(strings.TrimSpace(label))
	for i, s := range facilityLabels {
		if s == l {
			return Facility(i), nil
		}
	}
	return 0, unknownEnumValue("ParseFacility", "unknown facility label: %q", label)
}

// Priority computes the PRI value, facility*8 + severity.
func Priority(f Facility, s Severity) int {
	return f.Code()*8 + s.Code()
}

// SplitPriority is the inverse of Priority.
func SplitPriority(pri int) (Facility, Severity, error) {
	if pri < 0 {
		return 0, 0, unknownEnumValue("SplitPriority", "negative priority: %d", pri)
	}
	f, err := FacilityFromCode(pri / 8)
	if err != nil {
		return 0, 0, err
	}
	return f, Severity(pri % 8), nil
}
