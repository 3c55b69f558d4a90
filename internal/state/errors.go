package state

import "errors"

var (
	ErrZoneNotFound       = errors.New("state: zone not found")
	ErrEmptyStroke        = errors.New("state: stroke has no points")
	ErrInvalidTemperature = errors.New("state: temperature is not a number")
)
