package geopackage

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePointWKT extracts the first coordinate pair from a point WKT string.
// POINT, POINT Z/M/ZM and MULTIPOINT variants are accepted; for multipoints
// the first member is returned.
func ParsePointWKT(wkt string) (lon, lat float64, err error) {
	idx := strings.Index(wkt, "(")
	if idx < 0 {
		return 0, 0, fmt.Errorf("malformed WKT %q", wkt)
	}

	geomType := strings.TrimSpace(wkt[:idx])
	switch geomType {
	case "POINT", "POINT Z", "POINT M", "POINT ZM", "MULTIPOINT":
	default:
		return 0, 0, fmt.Errorf("geometry type %q is not a point", geomType)
	}

	// Flatten parentheses and separators; the first two fields are the
	// leading coordinate pair.
	body := strings.NewReplacer("(", " ", ")", " ", ",", " ").Replace(wkt[idx:])
	fields := strings.Fields(body)
	if len(fields) < 2 {
		return 0, 0, fmt.Errorf("malformed WKT %q", wkt)
	}

	lon, err = strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed WKT %q: %w", wkt, err)
	}
	lat, err = strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed WKT %q: %w", wkt, err)
	}
	return lon, lat, nil
}

// ExtractGeometryType extracts the geometry type from WKT.
func ExtractGeometryType(wkt string) string {
	if idx := strings.Index(wkt, "("); idx > 0 {
		return strings.TrimSpace(wkt[:idx])
	}
	return ""
}
