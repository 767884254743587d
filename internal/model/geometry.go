package model

import (
	"database/sql/driver"
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
)

// Geometry columns are stored as WKB so the schema works identically on
// Postgres (bytea) and SQLite (blob); neither backend needs a spatial
// extension to round-trip the data.

// GeomPoint wraps geom.Point with database serialization.
type GeomPoint struct {
	geom.Point
}

// GormDataType tells GORM to use a byte column for the point.
func (GeomPoint) GormDataType() string {
	return "bytes"
}

// Value implements driver.Valuer, encoding the point as WKB.
func (p GeomPoint) Value() (driver.Value, error) {
	return p.Point.AsBinary(), nil
}

// Scan implements sql.Scanner, decoding WKB bytes into the point.
func (p *GeomPoint) Scan(src any) error {
	data, err := wkbBytes(src)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		p.Point = geom.Point{}
		return nil
	}
	g, err := geom.UnmarshalWKB(data)
	if err != nil {
		return fmt.Errorf("scanning WKB point: %w", err)
	}
	point, ok := g.AsPoint()
	if !ok {
		return fmt.Errorf("scanned geometry is %s, not a point", g.Type())
	}
	p.Point = point
	return nil
}

// GeomLineString wraps geom.LineString with database serialization.
type GeomLineString struct {
	geom.LineString
}

// GormDataType tells GORM to use a byte column for the line string.
func (GeomLineString) GormDataType() string {
	return "bytes"
}

// Value implements driver.Valuer, encoding the line string as WKB.
func (ls GeomLineString) Value() (driver.Value, error) {
	return ls.LineString.AsBinary(), nil
}

// Scan implements sql.Scanner, decoding WKB bytes into the line string.
func (ls *GeomLineString) Scan(src any) error {
	data, err := wkbBytes(src)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		ls.LineString = geom.LineString{}
		return nil
	}
	g, err := geom.UnmarshalWKB(data)
	if err != nil {
		return fmt.Errorf("scanning WKB line string: %w", err)
	}
	lineString, ok := g.AsLineString()
	if !ok {
		return fmt.Errorf("scanned geometry is %s, not a line string", g.Type())
	}
	ls.LineString = lineString
	return nil
}

func wkbBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported geometry source type %T", src)
	}
}
