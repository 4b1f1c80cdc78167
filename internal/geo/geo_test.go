package geo

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"
)

func TestParseCoordinateDecimal(t *testing.T) {
	value, err := ParseCoordinate("-13.4733")
	if err != nil {
		t.Fatalf("parse decimal: %v", err)
	}
	if value != -13.4733 {
		t.Fatalf("expected -13.4733, got %f", value)
	}
}

func TestParseCoordinateDMSPrefixHemisphere(t *testing.T) {
	value, err := ParseCoordinate(`S 13° 28' 23.8"`)
	if err != nil {
		t.Fatalf("parse dms: %v", err)
	}
	if math.Abs(value-(-13.4733)) > 0.001 {
		t.Fatalf("expected about -13.4733, got %f", value)
	}
}

func TestParseCoordinateDMSSuffixHemisphere(t *testing.T) {
	value, err := ParseCoordinate(`13° 28' 23.8" W`)
	if err != nil {
		t.Fatalf("parse dms: %v", err)
	}
	if math.Abs(value-(-13.4733)) > 0.001 {
		t.Fatalf("expected about -13.4733, got %f", value)
	}
}

func TestParseCoordinateDegreesOnly(t *testing.T) {
	value, err := ParseCoordinate(`45°`)
	if err != nil {
		t.Fatalf("parse degrees: %v", err)
	}
	if value != 45 {
		t.Fatalf("expected 45, got %f", value)
	}
}

func TestParseCoordinateRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "north-ish", `13° 75' 0"`, `N 13° 28' 23.8" S`} {
		if _, err := ParseCoordinate(raw); !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("expected invalid format for %q, got %v", raw, err)
		}
	}
}

func TestParseLatitudeRange(t *testing.T) {
	if _, err := ParseLatitude("91"); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	if _, err := ParseLongitude("-180.5"); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// Maputo cathedral to Maputo fortress, roughly 600m apart.
	a := Point{Lat: -25.9686, Lon: 32.5726}
	b := Point{Lat: -25.9721, Lon: 32.5770}

	distance := Haversine(a, b)
	if distance < 400 || distance > 800 {
		t.Fatalf("expected a few hundred meters, got %f", distance)
	}

	if d := Haversine(a, a); d != 0 {
		t.Fatalf("expected zero distance, got %f", d)
	}
}

func TestValidatorCheck(t *testing.T) {
	v := NewValidator(zap.NewNop())
	registered := &Point{Lat: -25.9686, Lon: 32.5726}

	if _, err := v.Check("-25.9686", "32.5726", registered, 100); err != nil {
		t.Fatalf("expected on-site submission to pass: %v", err)
	}

	_, err := v.Check("-25.9721", "32.5770", registered, 100)
	if !errors.Is(err, ErrLocationMismatch) {
		t.Fatalf("expected location mismatch, got %v", err)
	}

	// No registered location skips the distance check entirely.
	if _, err := v.Check("-25.9721", "32.5770", nil, 100); err != nil {
		t.Fatalf("expected permissive check without registered location: %v", err)
	}
}
