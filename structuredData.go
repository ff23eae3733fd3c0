package syslog

import (
	"strings"
)

const maxSDNameLen = 32

// reservedSDIDs are the IANA registered SD-IDs that need no "@enterprise"
// suffix. ref: https://www.rfc-editor.org/rfc/rfc5424#section-7
var reservedSDIDs = map[string]struct{}{
	"timeQuality": {},
	"origin":      {},
	"meta":        {},
}

// SDParam is one PARAM-NAME="PARAM-VALUE" pair of a structured data element.
// The value is escaped when encoded, so it may hold any text.
type SDParam struct {
	Name  string
	Value string
}

// NewSDParam validates name and returns the param.
func NewSDParam(name, value string) (SDParam, error) {
	if err := validateSDName("PARAM-NAME", name); err != nil {
		return SDParam{}, err
	}
	return SDParam{Name: name, Value: value}, nil
}

// SDElement is an SD-ELEMENT: an SD-ID and its ordered params. Elements are
// values; AddParam returns a new element. Two elements with the same ID are
// the same key within a Message.
type SDElement struct {
	id     string
	params []SDParam
}

// NewSDElement validates id, and the name of every param, and returns the
// element.
func NewSDElement(id string, params ...SDParam) (SDElement, error) {
	if err := validateSDID(id); err != nil {
		return SDElement{}, err
	}
	for _, p := range params {
		if err := validateSDName("PARAM-NAME", p.Name); err != nil {
			return SDElement{}, err
		}
	}
	return SDElement{id: id, params: append([]SDParam(nil), params...)}, nil
}

// MustSDElement is like NewSDElement but panics on an invalid identifier. It
// is meant for package-level variables with constant IDs.
func MustSDElement(id string, params ...SDParam) SDElement {
	e, err := NewSDElement(id, params...)
	if err != nil {
		panic(err)
	}
	return e
}

// ID returns the SD-ID.
func (e SDElement) ID() string { return e.id }

// Params returns a copy of the params, in insertion order.
func (e SDElement) Params() []SDParam { return append([]SDParam(nil), e.params...) }

// AddParam returns a copy of e with the param appended.
func (e SDElement) AddParam(name, value string) (SDElement, error) {
	p, err := NewSDParam(name, value)
	if err != nil {
		return e, err
	}
	e2 := SDElement{id: e.id, params: make([]SDParam, len(e.params), len(e.params)+1)}
	copy(e2.params, e.params)
	e2.params = append(e2.params, p)
	return e2, nil
}

func validateSDID(id string) error {
	if err := validateSDName("SD-ID", id); err != nil {
		return err
	}
	if strings.IndexByte(id, '@') >= 0 {
		return nil
	}
	if _, ok := reservedSDIDs[id]; !ok {
		return invalidIdentifier("SD-ID", "%q is not a registered SD-ID and has no '@' enterprise suffix", id)
	}
	return nil
}

// validateSDName applies the rules shared by SD-ID and PARAM-NAME.
func validateSDName(kind, name string) error {
	if len(name) == 0 {
		return invalidIdentifier(kind, "must not be empty")
	}
	if len(name) > maxSDNameLen {
		return invalidIdentifier(kind, "%q is longer than %d characters", name, maxSDNameLen)
	}
	if i := strings.IndexAny(name, "= ]\""); i >= 0 {
		return invalidIdentifier(kind, "%q contains forbidden character %q", name, name[i])
	}
	for i := 0; i < len(name); i++ {
		if name[i] < '!' || name[i] > '~' {
			return invalidIdentifier(kind, "%q contains a byte outside printable US-ASCII", name)
		}
	}
	return nil
}
