package inject

import (
	"context"
	"sync"

	"github.com/fieldbot/drivecore/components/motor"
)

// Sink is an injected actuator sink that also records every command set it is handed.
type Sink struct {
	motor.Sink
	ApplyFunc func(ctx context.Context, commands motor.CommandSet) error

	mu      sync.Mutex
	applied []motor.CommandSet
}

// Apply records commands, then calls the injected Apply or the real version. With neither, it
// accepts the commands.
func (s *Sink) Apply(ctx context.Context, commands motor.CommandSet) error {
	s.mu.Lock()
	s.applied = append(s.applied, append(motor.CommandSet(nil), commands...))
	s.mu.Unlock()

	if s.ApplyFunc != nil {
		return s.ApplyFunc(ctx, commands)
	}
	if s.Sink != nil {
		return s.Sink.Apply(ctx, commands)
	}
	return nil
}

// Applied returns every command set handed to Apply, oldest first.
func (s *Sink) Applied() []motor.CommandSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]motor.CommandSet(nil), s.applied...)
}

// Last returns the most recent command set, or nil.
func (s *Sink) Last() motor.CommandSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.applied) == 0 {
		return nil
	}
	return s.applied[len(s.applied)-1]
}
