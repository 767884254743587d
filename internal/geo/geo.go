package geo

import (
	"errors"
	"strconv"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/skyward/deconflict/pkg/core"
)

// Detection runs in a planar frame. Flight plans supplied as WGS84
// longitude/latitude are projected to EPSG:3857 metres first, so Euclidean
// separation distances are meaningful. Geometry persisted by the storage
// backends is in WKB, produced from the builders below.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Position3DFromString parses a string in the format "x,y" or "x,y,z"
// into a core.Position3D.
func Position3DFromString(coords string) (core.Position3D, error) {
	coordsSplit := strings.Split(coords, ",")
	if len(coordsSplit) < 2 {
		return core.Position3D{}, ErrInvalidCoordinates
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[0]), 64)
	if err != nil {
		return core.Position3D{}, ErrInvalidCoordinates
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[1]), 64)
	if err != nil {
		return core.Position3D{}, ErrInvalidCoordinates
	}
	var z float64
	if len(coordsSplit) > 2 {
		z, err = strconv.ParseFloat(strings.TrimSpace(coordsSplit[2]), 64)
		if err != nil {
			return core.Position3D{}, ErrInvalidCoordinates
		}
	}
	return core.Position3D{X: x, Y: y, Z: z}, nil
}

// ProjectGeodetic converts a WGS84 longitude/latitude (EPSG:4326) into the
// planar EPSG:3857 frame used by the detector. The altitude passes through
// unchanged.
func ProjectGeodetic(longitude, latitude, altitude float64) core.Position3D {
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ := f(longitude, latitude, 0)
	return core.Position3D{X: x, Y: y, Z: altitude}
}

// Point builds an XYZ geometry point from a position.
func Point(p core.Position3D) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: p.X, Y: p.Y},
		Z:    p.Z,
		Type: geom.DimXYZ,
	})
}

// PathLineString builds an XYZ line string over the mission's waypoints.
// Missions with fewer than 2 waypoints have no path geometry.
func PathLineString(m *core.Mission) (geom.LineString, error) {
	if len(m.Waypoints) < 2 {
		return geom.LineString{}, errors.New("mission path needs at least 2 waypoints")
	}

	flatCoords := make([]float64, 0, len(m.Waypoints)*3)
	for _, w := range m.Waypoints {
		flatCoords = append(flatCoords, w.Position.X, w.Position.Y, w.Position.Z)
	}

	seq := geom.NewSequence(flatCoords, geom.DimXYZ)
	return geom.NewLineString(seq), nil
}
