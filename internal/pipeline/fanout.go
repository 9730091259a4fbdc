package pipeline

import (
	"context"
	"errors"

	"github.com/couchcryptid/tempest-listener/internal/domain"
)

type fanOut []Sink

// FanOut returns a Sink that inserts into every sink in order. A failing
// sink does not stop the rest; the failures are joined.
func FanOut(sinks ...Sink) Sink {
	if len(sinks) == 1 {
		return sinks[0]
	}
	return fanOut(sinks)
}

func (f fanOut) Insert(ctx context.Context, w domain.Weather) error {
	var errs []error
	for _, s := range f {
		if err := s.Insert(ctx, w); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
