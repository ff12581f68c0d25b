package state

import (
	"fmt"
	"strings"
)

const ( // device status
	OFF = iota
	ON  = iota
)

type Kind string

const (
	LIGHT Kind = "light"
	AC    Kind = "ac"
	TV    Kind = "tv"
)

type Device interface {
	Name() string
	Kind() Kind
	Location() string
	Status() uint
}

// Reporter is called after every state change of a device.
type Reporter func(Device)

// Switch is an on/off device. It is the receiver for the remote's commands.
type Switch struct {
	name     string
	kind     Kind
	location string
	status   uint
	report   Reporter
}

func NewSwitch(kind string, name string, location string, report Reporter) (*Switch, error) {
	switch Kind(strings.ToLower(kind)) {
	case LIGHT:
		return NewLight(name, location, report), nil
	case AC:
		return NewAC(name, location, report), nil
	case TV:
		return NewTV(name, location, report), nil
	default:
		return nil, fmt.Errorf("unknown device kind %q for %s", kind, name)
	}
}

func NewLight(name, location string, report Reporter) *Switch {
	return &Switch{name: name, kind: LIGHT, location: location, report: report}
}

func NewAC(name, location string, report Reporter) *Switch {
	return &Switch{name: name, kind: AC, location: location, report: report}
}

func NewTV(name, location string, report Reporter) *Switch {
	return &Switch{name: name, kind: TV, location: location, report: report}
}

func (s *Switch) Name() string     { return s.name }
func (s *Switch) Kind() Kind       { return s.kind }
func (s *Switch) Location() string { return s.location }
func (s *Switch) Status() uint     { return s.status }

func (s *Switch) On() {
	s.status = ON
	s.changed()
}

func (s *Switch) Off() {
	s.status = OFF
	s.changed()
}

func (s *Switch) changed() {
	if s.report != nil {
		s.report(s)
	}
}

// StatusString renders a device status as the ON/OFF payload used on the wire.
func StatusString(status uint) string {
	if status == ON {
		return "ON"
	}
	return "OFF"
}

// DisplayName is how a kind shows up in human facing output, e.g. "Light is ON".
func (k Kind) DisplayName() string {
	switch k {
	case AC:
		return "AC"
	case TV:
		return "TV"
	case LIGHT:
		return "Light"
	}
	return string(k)
}
