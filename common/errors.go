package common

import (
	"fmt"
	"strings"
)

// ErrorType protocol error type
type ErrorType uint16

const (
	// ErrorTypeBadRequest request was not understood
	ErrorTypeBadRequest ErrorType = 1
	// ErrorTypeMeterModFailed problem modifying a meter entry
	ErrorTypeMeterModFailed ErrorType = 12
)

// bad request codes
const (
	BadRequestBadType uint16 = 1
	BadRequestIsSlave uint16 = 10
)

// meter mod failed codes
const (
	MeterModUnknown uint16 = iota
	MeterModMeterExists
	MeterModInvalidMeter
	MeterModUnknownMeter
	MeterModBadCommand
	MeterModBadFlags
	MeterModBadRate
	MeterModBadBurst
	MeterModBadBand
	MeterModBadBandValue
	MeterModOutOfMeters
	MeterModOutOfBands
)

// Error a request rejection reported back to the controller
type Error struct {
	Type ErrorType
	Code uint16
}

// Protocol errors returned by the meter table
var (
	ErrMeterExists  = &Error{Type: ErrorTypeMeterModFailed, Code: MeterModMeterExists}
	ErrInvalidMeter = &Error{Type: ErrorTypeMeterModFailed, Code: MeterModInvalidMeter}
	ErrUnknownMeter = &Error{Type: ErrorTypeMeterModFailed, Code: MeterModUnknownMeter}
	ErrBadBand      = &Error{Type: ErrorTypeMeterModFailed, Code: MeterModBadBand}
	ErrOutOfMeters  = &Error{Type: ErrorTypeMeterModFailed, Code: MeterModOutOfMeters}
	ErrOutOfBands   = &Error{Type: ErrorTypeMeterModFailed, Code: MeterModOutOfBands}
	ErrBadType      = &Error{Type: ErrorTypeBadRequest, Code: BadRequestBadType}
	ErrIsSlave      = &Error{Type: ErrorTypeBadRequest, Code: BadRequestIsSlave}
)

var meterModCodeNames = map[uint16]string{
	MeterModUnknown:      "unknown",
	MeterModMeterExists:  "meter exists",
	MeterModInvalidMeter: "invalid meter",
	MeterModUnknownMeter: "unknown meter",
	MeterModBadCommand:   "bad command",
	MeterModBadFlags:     "bad flags",
	MeterModBadRate:      "bad rate",
	MeterModBadBurst:     "bad burst",
	MeterModBadBand:      "bad band",
	MeterModBadBandValue: "bad band value",
	MeterModOutOfMeters:  "out of meters",
	MeterModOutOfBands:   "out of bands",
}

var badRequestCodeNames = map[uint16]string{
	BadRequestBadType: "bad type",
	BadRequestIsSlave: "is slave",
}

func (e *Error) Error() string {
	switch e.Type {
	case ErrorTypeMeterModFailed:
		if name, ok := meterModCodeNames[e.Code]; ok {
			return "meter mod failed: " + name
		}
	case ErrorTypeBadRequest:
		if name, ok := badRequestCodeNames[e.Code]; ok {
			return "bad request: " + name
		}
	}
	return fmt.Sprintf("error type %d code %d", e.Type, e.Code)
}

// Reason returns the code name in snake case, e.g. "meter_exists"
func (e *Error) Reason() string {
	var name string
	switch e.Type {
	case ErrorTypeMeterModFailed:
		name = meterModCodeNames[e.Code]
	case ErrorTypeBadRequest:
		name = badRequestCodeNames[e.Code]
	}
	if name == "" {
		return fmt.Sprintf("type_%d_code_%d", e.Type, e.Code)
	}
	return strings.ReplaceAll(name, " ", "_")
}

// Is matches any Error with the same type and code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}
