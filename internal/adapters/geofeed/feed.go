// Package geofeed implements the geolocation source over a JSONL feed
// file: a companion process (GPS daemon, mobile bridge) appends one
// sample per line and this source tails it. One-shot reads only accept
// samples produced after the request started, so a stale fix can never
// gate a shift start.
package geofeed

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/pontovivo/ponto_vivo_app/internal/apperrors"
	"github.com/pontovivo/ponto_vivo_app/internal/core/domain"
	"github.com/pontovivo/ponto_vivo_app/internal/core/ports"
)

// DefaultPollInterval is how often the feed file is re-read.
const DefaultPollInterval = 500 * time.Millisecond

type feedLine struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Accuracy  float64   `json:"accuracy"`
	SampledAt time.Time `json:"sampledAt"`
}

// Source tails a JSONL position feed.
type Source struct {
	path         string
	pollInterval time.Duration
	clock        ports.Clock
}

var _ ports.GeoSource = (*Source)(nil)

// NewSource creates a source reading from the feed at path.
func NewSource(path string, pollInterval time.Duration, clock ports.Clock) *Source {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if clock == nil {
		clock = ports.RealClock{}
	}
	return &Source{path: path, pollInterval: pollInterval, clock: clock}
}

// ReadOnce waits for a sample newer than the call itself, bounded by the
// context deadline. A missing feed yields ErrGeoUnavailable, an expired
// deadline ErrGeoTimeout.
func (s *Source) ReadOnce(ctx context.Context) (domain.GeoSample, error) {
	start := s.clock.Now()
	sawFeed := false
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		sample, ok, err := s.lastSample()
		if err == nil {
			sawFeed = true
			if ok && sample.SampledAt.After(start) {
				return sample, nil
			}
		}

		select {
		case <-ctx.Done():
			if !sawFeed {
				return domain.GeoSample{}, apperrors.ErrGeoUnavailable
			}
			return domain.GeoSample{}, apperrors.ErrGeoTimeout
		case <-ticker.C:
		}
	}
}

// Watch tails the feed until the cancel func is called, reporting each
// new sample. Read failures surface through onError without closing the
// stream; the feed writer's own recovery acts as the retry policy.
func (s *Source) Watch(onSample func(domain.GeoSample), onError func(error)) (ports.CancelFunc, error) {
	done := make(chan struct{})
	var once sync.Once
	cancel := func() { once.Do(func() { close(done) }) }

	go func() {
		var lastSeen time.Time
		failing := false
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
			}

			sample, ok, err := s.lastSample()
			if err != nil {
				if !failing {
					failing = true
					onError(apperrors.ErrGeoUnavailable)
				}
				continue
			}
			failing = false
			if !ok || !sample.SampledAt.After(lastSeen) {
				continue
			}
			lastSeen = sample.SampledAt
			onSample(sample)
		}
	}()

	return cancel, nil
}

// lastSample returns the newest parseable sample in the feed. ok is false
// when the feed is empty or holds no valid line.
func (s *Source) lastSample() (domain.GeoSample, bool, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return domain.GeoSample{}, false, err
	}
	defer f.Close()

	var last *feedLine
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var line feedLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue
		}
		if last == nil || line.SampledAt.After(last.SampledAt) {
			l := line
			last = &l
		}
	}
	if err := scanner.Err(); err != nil {
		return domain.GeoSample{}, false, err
	}
	if last == nil {
		return domain.GeoSample{}, false, nil
	}
	return domain.GeoSample{
		Position:  domain.Coordinate{Latitude: last.Lat, Longitude: last.Lng},
		Accuracy:  last.Accuracy,
		SampledAt: last.SampledAt,
	}, true, nil
}
