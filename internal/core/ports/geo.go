package ports

import (
	"context"

	"github.com/pontovivo/ponto_vivo_app/internal/core/domain"
)

// CancelFunc stops a continuous watch. Safe to call more than once.
type CancelFunc func()

// GeoSource is the geolocation capability. Implementations report
// failures through apperrors sentinels (ErrGeoPermissionDenied,
// ErrGeoUnavailable, ErrGeoTimeout).
type GeoSource interface {
	// ReadOnce returns a fresh position, bounded by the context deadline.
	// Cached positions are never returned.
	ReadOnce(ctx context.Context) (domain.GeoSample, error)

	// Watch streams positions until the returned CancelFunc is called.
	// Errors are reported through onError; the stream itself relies on
	// the platform's retry and is not closed by transient failures.
	Watch(onSample func(domain.GeoSample), onError func(error)) (CancelFunc, error)
}
