package export

import "errors"

var (
	// ErrNoZones is returned when there is nothing to export.
	ErrNoZones       = errors.New("no thermal data to export")
	ErrMalformedCSV  = errors.New("export: malformed csv")
	ErrUnknownFormat = errors.New("export: unknown format")
)
