package syslog

import (
	"errors"
	"testing"
)

func TestPriority_RoundTrip(t *testing.T) {
	for f := FacilityKern; f <= FacilityLocal7; f++ {
		for s := SeverityEmergency; s <= SeverityDebug; s++ {
			pri := Priority(f, s)
			if pri != f.Code()*8+s.Code() {
				t.Fatalf("Priority(%s, %s) = %d", f, s, pri)
			}
			f2, s2, err := SplitPriority(pri)
			if err != nil {
				t.Fatalf("SplitPriority(%d): %v", pri, err)
			}
			if f2 != f || s2 != s {
				t.Fatalf("SplitPriority(%d) = %s, %s; expected %s, %s", pri, f2, s2, f, s)
			}
		}
	}
}

func TestPriority_Examples(t *testing.T) {
	tests := []struct {
		f      Facility
		s      Severity
		expect int
	}{
		{FacilityKern, SeverityEmergency, 0},
		{FacilityUser, SeverityInformational, 14},
		{FacilityAuth, SeverityCritical, 34},
		{FacilityLocal4, SeverityNotice, 165},
		{FacilityLocal7, SeverityDebug, 191},
	}
	for _, tt := range tests {
		if got := Priority(tt.f, tt.s); got != tt.expect {
			t.Errorf("Priority(%s, %s): expected %d, got %d", tt.f, tt.s, tt.expect, got)
		}
	}
	if _, _, err := SplitPriority(192); !errors.Is(err, ErrUnknownEnumValue) {
		t.Errorf("expected ErrUnknownEnumValue for PRI 192, got %v", err)
	}
	if _, _, err := SplitPriority(-1); !errors.Is(err, ErrUnknownEnumValue) {
		t.Errorf("expected ErrUnknownEnumValue for PRI -1, got %v", err)
	}
}

func TestFacility_Lookup(t *testing.T) {
	tests := []struct {
		name   string
		label  string
		expect Facility
	}{
		{"upper case", "LOCAL0", FacilityLocal0},
		{"lower case", "authpriv", FacilityAuthPriv},
		{"mixed case with spaces", " Daemon ", FacilityDaemon},
	}
	for i := 0; i < len(tests); i++ {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseFacility(tt.label)
			if err != nil {
				t.Fatal(err)
			}
			if f != tt.expect {
				t.Errorf("expected %s, got %s", tt.expect, f)
			}
		})
	}

	if _, err := ParseFacility("local8"); !errors.Is(err, ErrUnknownEnumValue) {
		t.Errorf("expected ErrUnknownEnumValue, got %v", err)
	}
	if _, err := FacilityFromCode(24); !errors.Is(err, ErrUnknownEnumValue) {
		t.Errorf("expected ErrUnknownEnumValue, got %v", err)
	}
	if f, err := FacilityFromCode(23); err != nil || f != FacilityLocal7 {
		t.Errorf("expected LOCAL7, got %s, %v", f, err)
	}
	if s := Facility(30).String(); s != "Facility(30)" {
		t.Errorf("unexpected label for unknown facility: %s", s)
	}
}

func TestSeverity_Lookup(t *testing.T) {
	for s := SeverityEmergency; s <= SeverityDebug; s++ {
		s2, err := ParseSeverity(s.String())
		if err != nil {
			t.Fatal(err)
		}
		if s2 != s {
			t.Errorf("expected %s, got %s", s, s2)
		}
		s3, err := SeverityFromCode(s.Code())
		if err != nil || s3 != s {
			t.Errorf("SeverityFromCode(%d) = %s, %v", s.Code(), s3, err)
		}
	}

	if s, err := ParseSeverity("warning"); err != nil || s != SeverityWarning {
		t.Errorf("expected WARNING, got %s, %v", s, err)
	}
	if _, err := ParseSeverity("warn"); !errors.Is(err, ErrUnknownEnumValue) {
		t.Errorf("expected ErrUnknownEnumValue, got %v", err)
	}
	if _, err := SeverityFromCode(8); !errors.Is(err, ErrUnknownEnumValue) {
		t.Errorf("expected ErrUnknownEnumValue, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in     string
		expect Format
	}{
		{"rfc3164", RFC3164},
		{"RFC_5424", RFC5424},
		{"rfc-5425", RFC5425},
		{"5424", RFC5424},
	}
	for _, tt := range tests {
		f, err := ParseFormat(tt.in)
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", tt.in, err)
			continue
		}
		if f != tt.expect {
			t.Errorf("ParseFormat(%q): expected %s, got %s", tt.in, tt.expect, f)
		}
	}
	if _, err := ParseFormat("json"); !errors.Is(err, ErrUnknownEnumValue) {
		t.Errorf("expected ErrUnknownEnumValue, got %v", err)
	}
}
