package geo

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrInvalidFormat    = errors.New("invalid_coordinate_format")
	ErrOutOfRange       = errors.New("coordinate_out_of_range")
	ErrLocationMismatch = errors.New("location_mismatch")
)

// earthRadiusMeters is the mean Earth radius used for great-circle distance.
const earthRadiusMeters = 6371000.0

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// dmsPattern accepts `D° M' S"` with an optional hemisphere letter either
// prefixed or suffixed, e.g. `S 13° 28' 23.8"` or `13°28'23.8" S`.
var dmsPattern = regexp.MustCompile(
	`^([NSEWnsew])?\s*(\d+(?:\.\d+)?)\s*[°º]\s*(?:(\d+(?:\.\d+)?)\s*['′]\s*)?(?:(\d+(?:\.\d+)?)\s*(?:"|″|'')\s*)?([NSEWnsew])?$`,
)

// ParseCoordinate parses a decimal-degrees or DMS coordinate string.
func ParseCoordinate(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrInvalidFormat
	}

	if value, err := strconv.ParseFloat(raw, 64); err == nil {
		return value, nil
	}

	match := dmsPattern.FindStringSubmatch(raw)
	if match == nil {
		return 0, ErrInvalidFormat
	}

	prefix, suffix := match[1], match[5]
	if prefix != "" && suffix != "" {
		return 0, ErrInvalidFormat
	}
	hemisphere := strings.ToUpper(prefix + suffix)

	degrees, err := strconv.ParseFloat(match[2], 64)
	if err != nil {
		return 0, ErrInvalidFormat
	}
	var minutes, seconds float64
	if match[3] != "" {
		if minutes, err = strconv.ParseFloat(match[3], 64); err != nil {
			return 0, ErrInvalidFormat
		}
	}
	if match[4] != "" {
		if seconds, err = strconv.ParseFloat(match[4], 64); err != nil {
			return 0, ErrInvalidFormat
		}
	}
	if minutes >= 60 || seconds >= 60 {
		return 0, ErrInvalidFormat
	}

	value := degrees + minutes/60 + seconds/3600
	if hemisphere == "S" || hemisphere == "W" {
		value = -value
	}
	return value, nil
}

// ParseLatitude parses and range-checks a latitude input.
func ParseLatitude(raw string) (float64, error) {
	value, err := ParseCoordinate(raw)
	if err != nil {
		return 0, err
	}
	if value < -90 || value > 90 {
		return 0, ErrOutOfRange
	}
	return value, nil
}

// ParseLongitude parses and range-checks a longitude input.
func ParseLongitude(raw string) (float64, error) {
	value, err := ParseCoordinate(raw)
	if err != nil {
		return 0, err
	}
	if value < -180 || value > 180 {
		return 0, ErrOutOfRange
	}
	return value, nil
}

// Haversine returns the great-circle distance between two points in meters.
func Haversine(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Asin(math.Sqrt(h))
}

// Validator enforces that reading submissions happen at the metered site.
type Validator struct {
	log *zap.Logger
}

func NewValidator(log *zap.Logger) *Validator {
	return &Validator{log: log.Named("geo.validator")}
}

// Check parses the submitted coordinates and, when the connection has a
// registered location, rejects submissions further than maxDriftMeters from
// it. Connections without a registered location skip the distance check.
func (v *Validator) Check(latRaw, lonRaw string, registered *Point, maxDriftMeters float64) (Point, error) {
	lat, err := ParseLatitude(latRaw)
	if err != nil {
		return Point{}, err
	}
	lon, err := ParseLongitude(lonRaw)
	if err != nil {
		return Point{}, err
	}
	submitted := Point{Lat: lat, Lon: lon}

	if registered == nil {
		v.log.Warn("connection has no registered location, skipping distance check",
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
		)
		return submitted, nil
	}

	distance := Haversine(submitted, *registered)
	if distance > maxDriftMeters {
		v.log.Info("reading submitted outside allowed drift",
			zap.Float64("distance_m", distance),
			zap.Float64("max_drift_m", maxDriftMeters),
		)
		return Point{}, ErrLocationMismatch
	}
	return submitted, nil
}
