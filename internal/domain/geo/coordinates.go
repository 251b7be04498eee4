package geo

import (
	"math"
	"strconv"
	"strings"
)

// EarthRadiusMeters is the mean radius of Earth used for Haversine distance.
const EarthRadiusMeters = 6_371_000.0

// Haversine returns the great-circle distance in meters between two points
// specified by latitude and longitude in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ParseCoordinates parses "lat,long" text as stored with destination records.
// Surrounding braces or brackets and a "lat:"/"lng:" dict-like form are tolerated.
func ParseCoordinates(s string) (lat, lon float64, ok bool) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "{}[]()")
	if s == "" {
		return 0, 0, false
	}
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, okLat := parseComponent(parts[0])
	lon, okLon := parseComponent(parts[1])
	if !okLat || !okLon || !ValidateCoordinates(lat, lon) {
		return 0, 0, false
	}
	return lat, lon, true
}

func parseComponent(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if _, v, found := strings.Cut(s, ":"); found {
		s = strings.TrimSpace(v)
	}
	s = strings.Trim(s, `'"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
