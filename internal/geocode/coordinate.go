// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultMinPrecision is the default minimum number of fractional digits per coordinate
const DefaultMinPrecision = 5

// Coordinate represents a geographic coordinate. Latitude and longitude are kept as the
// decimal text the caller sent, so no precision is lost on the way to the authorities.
type Coordinate struct {
	Lat string
	Lng string
}

// String returns the coordinate in "lat,lng" form
func (c Coordinate) String() string {
	return c.Lat + "," + c.Lng
}

// Validator parses raw "lat,lng" input into a Coordinate.
type Validator struct {
	MinPrecision int
}

// NewValidator returns a Validator that requires at least minPrecision fractional digits
func NewValidator(minPrecision int) Validator {
	return Validator{MinPrecision: minPrecision}
}

// Parse splits raw into latitude and longitude and validates format, precision and range.
// It returns a *FormatError if raw is not a pair of decimal numbers and an *InputError if
// the values are not precise enough or out of range.
func (v Validator) Parse(raw string) (Coordinate, error) {
	fields := strings.Split(raw, ",")
	if len(fields) != 2 {
		return Coordinate{}, &FormatError{Input: raw, Reason: "expected exactly two comma-separated values"}
	}

	lat, latVal, err := v.parseField(raw, fields[0])
	if err != nil {
		return Coordinate{}, err
	}
	lng, lngVal, err := v.parseField(raw, fields[1])
	if err != nil {
		return Coordinate{}, err
	}

	if latVal < -90 || latVal > 90 || lngVal < -180 || lngVal > 180 {
		return Coordinate{}, &InputError{Message: "latlng out of range"}
	}
	return Coordinate{Lat: lat, Lng: lng}, nil
}

// parseField validates a single coordinate value and returns its trimmed text and numeric value
func (v Validator) parseField(raw, field string) (string, float64, error) {
	field = strings.TrimSpace(field)
	intPart, fracPart, found := strings.Cut(field, ".")
	if !found {
		return "", 0, &FormatError{Input: raw, Reason: fmt.Sprintf("%q has no decimal point", field)}
	}
	intPart = strings.TrimPrefix(strings.TrimPrefix(intPart, "-"), "+")
	if !isDigits(intPart, true) || !isDigits(fracPart, false) {
		return "", 0, &FormatError{Input: raw, Reason: fmt.Sprintf("%q is not a decimal number", field)}
	}
	value, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return "", 0, &FormatError{Input: raw, Reason: fmt.Sprintf("%q is not a decimal number", field)}
	}

	if len(fracPart) < v.MinPrecision {
		return "", 0, &InputError{
			Message: fmt.Sprintf("latlng precision must be %d decimal places or more", v.MinPrecision),
		}
	}
	return field, value, nil
}

func isDigits(s string, allowEmpty bool) bool {
	if s == "" {
		return allowEmpty
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
