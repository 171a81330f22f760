package geo

import (
	"encoding/binary"
	"encoding/json"
	"math"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// earthRadiusKm is the mean Earth radius.
const earthRadiusKm = 6371.0

// Point is a geographic coordinate pair in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// DistanceKm returns the great-circle distance between two points in
// kilometres, using the haversine formula.
func DistanceKm(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// PathLengthKm sums the leg distances along pts in order. Fewer than two
// points is a zero-length path.
func PathLengthKm(pts []Point) float64 {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += DistanceKm(pts[i-1], pts[i])
	}
	return total
}

// RoundKm rounds a distance to one decimal place for display.
func RoundKm(km float64) float64 {
	return math.Round(km*10) / 10
}

// LineStringWKB encodes an ordered path as a little-endian WKB LineString.
// Coordinates follow the GeoJSON axis order (lng, lat). Returns nil for
// fewer than two points.
func LineStringWKB(pts []Point) ([]byte, error) {
	if len(pts) < 2 {
		return nil, nil
	}
	coords := make([]geom.Coord, len(pts))
	for i, p := range pts {
		coords[i] = geom.Coord{p.Lng, p.Lat}
	}
	ls := geom.NewLineString(geom.XY)
	if _, err := ls.SetCoords(coords); err != nil {
		return nil, err
	}
	return wkb.Marshal(ls, binary.LittleEndian)
}

// WKBToGeoJSON converts stored WKB geometry into a GeoJSON fragment for
// API responses.
func WKBToGeoJSON(wkbData []byte) (json.RawMessage, error) {
	g, err := wkb.Unmarshal(wkbData)
	if err != nil {
		return nil, err
	}
	geoJSON, err := gjson.Marshal(g)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(geoJSON), nil
}

// GeoJSONToWKB parses a GeoJSON geometry string and re-encodes it as WKB
// for storage.
func GeoJSONToWKB(geometryStr string) ([]byte, error) {
	var g geom.T
	if err := gjson.Unmarshal([]byte(geometryStr), &g); err != nil {
		return nil, err
	}
	return wkb.Marshal(g, binary.LittleEndian)
}

// toRadians converts an angle from degrees to radians.
func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
