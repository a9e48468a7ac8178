package mapview

import (
	"context"
	"errors"
)

var (
	// ErrPermissionDenied is reported when the user refuses location access.
	ErrPermissionDenied = errors.New("mapview: geolocation permission denied")
	// ErrPositionUnavailable is reported when the device cannot determine a position.
	ErrPositionUnavailable = errors.New("mapview: position unavailable")
	// ErrUnsupported is reported when the browser has no geolocation capability.
	ErrUnsupported = errors.New("mapview: geolocation unsupported")
)

// Geolocator answers a single current-position request.
type Geolocator interface {
	CurrentPosition(ctx context.Context) (LatLng, error)
}

// ReportedPosition is a position (or failure) the browser already obtained.
type ReportedPosition struct {
	Position LatLng
	Err      error
}

// CurrentPosition implements Geolocator.
func (r ReportedPosition) CurrentPosition(ctx context.Context) (LatLng, error) {
	if err := ctx.Err(); err != nil {
		return LatLng{}, err
	}
	if r.Err != nil {
		return LatLng{}, r.Err
	}
	return r.Position, nil
}

// ParseGeolocationError maps the browser's error code to an error.
func ParseGeolocationError(code string) error {
	switch code {
	case "denied", "permission_denied":
		return ErrPermissionDenied
	case "unsupported":
		return ErrUnsupported
	default:
		return ErrPositionUnavailable
	}
}
