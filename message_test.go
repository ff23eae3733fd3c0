package syslog

import (
	"reflect"
	"testing"
)

func TestNewMessage_Defaults(t *testing.T) {
	m := NewMessage("hello")
	if m.Facility != FacilityUser || m.Severity != SeverityInformational {
		t.Fatalf("expected USER/INFORMATIONAL, got %s/%s", m.Facility, m.Severity)
	}
	if string(m.Body) != "hello" {
		t.Fatalf("unexpected body: %q", m.Body)
	}
	if m.Priority() != 14 {
		t.Fatalf("expected PRI 14, got %d", m.Priority())
	}
}

func TestMessage_WithSDElementOverwrites(t *testing.T) {
	a1 := MustSDElement("a@1", SDParam{Name: "v", Value: "1"})
	b := MustSDElement("b@1", SDParam{Name: "v", Value: "b"})
	a2 := MustSDElement("a@1", SDParam{Name: "v", Value: "2"})

	m := NewMessage("x").WithSDElement(a1).WithSDElement(b).WithSDElement(a2)

	els := m.SDElements()
	if len(els) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(els))
	}
	if els[0].ID() != "a@1" || els[1].ID() != "b@1" {
		t.Fatalf("expected overwritten element to keep its position, got %s, %s", els[0].ID(), els[1].ID())
	}
	if got := els[0].Params()[0].Value; got != "2" {
		t.Fatalf("expected later element to win, got value %q", got)
	}

	e, ok := m.SDElement("b@1")
	if !ok || !reflect.DeepEqual(e, b) {
		t.Fatalf("SDElement lookup failed: %+v, %v", e, ok)
	}
	if _, ok := m.SDElement("c@1"); ok {
		t.Fatal("unexpected element c@1")
	}
}

func TestMessage_WithSDElementIgnoresZeroElement(t *testing.T) {
	m := NewMessage("x").WithHostname("h").WithSDElement(SDElement{})
	if n := len(m.SDElements()); n != 0 {
		t.Fatalf("expected the zero element to be ignored, got %d elements", n)
	}

	b, err := Marshal(m.WithTimestamp(testTime), RFC5424)
	if err != nil {
		t.Fatal(err)
	}
	if expect := "<14>1 2013-12-05T10:30:05.000Z h - - - x"; string(b) != expect {
		t.Fatalf("expected %q, got %q", expect, b)
	}
}

func TestMessage_BuildersDoNotAlias(t *testing.T) {
	base := NewMessage("x").WithSDElement(MustSDElement("a@1"))
	m1 := base.WithSDElement(MustSDElement("b@1"))
	m2 := base.WithSDElement(MustSDElement("c@1"))

	if len(base.SDElements()) != 1 {
		t.Fatalf("builder modified the receiver: %d elements", len(base.SDElements()))
	}
	if _, ok := m1.SDElement("c@1"); ok {
		t.Fatal("sibling messages share structured data")
	}
	if _, ok := m2.SDElement("b@1"); ok {
		t.Fatal("sibling messages share structured data")
	}
}

func TestMessage_WithBodyCopies(t *testing.T) {
	body := []byte("original")
	m := NewMessage("").WithBody(body)
	body[0] = 'X'
	if string(m.Body) != "original" {
		t.Fatalf("WithBody retained the caller's slice: %q", m.Body)
	}
	if m.WithBody(nil).Body != nil {
		t.Fatal("WithBody(nil) should remove the body")
	}
}

func TestMessage_Clone(t *testing.T) {
	m := testMessage().WithSDElement(MustSDElement("a@1", SDParam{Name: "v", Value: "1"}))
	c := m.Clone()
	if !reflect.DeepEqual(m, c) {
		t.Fatalf("clone differs:\n%+v\n%+v", m, c)
	}

	c.Body[0] = 'X'
	c.sd[0].params[0].Value = "changed"
	if string(m.Body) != "a syslog message" {
		t.Fatalf("clone shares the body: %q", m.Body)
	}
	if m.sd[0].params[0].Value != "1" {
		t.Fatal("clone shares structured data params")
	}
}
