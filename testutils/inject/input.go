package inject

import (
	"context"

	"github.com/fieldbot/drivecore/components/input"
)

// InputSource is an injected input source.
type InputSource struct {
	input.Source
	SampleFunc func(ctx context.Context) (input.Snapshot, error)
}

// Sample calls the injected Sample or the real version.
func (s *InputSource) Sample(ctx context.Context) (input.Snapshot, error) {
	if s.SampleFunc == nil {
		return s.Source.Sample(ctx)
	}
	return s.SampleFunc(ctx)
}
