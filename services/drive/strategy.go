package drive

import (
	"sort"
	"sync"

	"github.com/fieldbot/drivecore/components/input"
	"github.com/fieldbot/drivecore/components/motor"
	"github.com/fieldbot/drivecore/utils"
)

// Requirements are the minimum input and output cardinality a Strategy needs. Axes and Buttons
// apply to every controller.
type Requirements struct {
	Controllers int
	Axes        int
	Buttons     int
	Actuators   int
}

// Check returns a configuration error naming the first requirement shape and actuators fail.
func (r Requirements) Check(shape input.Shape, actuators int) error {
	switch {
	case len(shape) < r.Controllers:
		return utils.NewConfigurationError("need %d controllers, have %d", r.Controllers, len(shape))
	case shape.MinAxes() < r.Axes:
		return utils.NewConfigurationError("need %d axes per controller, have %s", r.Axes, shape)
	case shape.MinButtons() < r.Buttons:
		return utils.NewConfigurationError("need %d buttons per controller, have %s", r.Buttons, shape)
	case actuators < r.Actuators:
		return utils.NewConfigurationError("need %d actuators, have %d", r.Actuators, actuators)
	}
	return nil
}

// A Strategy maps one controller snapshot to one command set. Dispatch is only called with
// snapshots and actuator counts that satisfy Requirements, and must return exactly actuators
// commands.
type Strategy interface {
	Requirements() Requirements
	Dispatch(snapshot input.Snapshot, actuators int) (motor.CommandSet, error)
}

// Registry maps drive types to strategies.
type Registry struct {
	mu         sync.RWMutex
	strategies map[DriveType]Strategy
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: map[DriveType]Strategy{}}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry holds the built-in strategies registered at init.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// RegisterStrategy registers a strategy in the default registry. It panics on a nil strategy or
// the Unknown drive type, since both are programming errors caught at init.
func RegisterStrategy(t DriveType, s Strategy) {
	if err := defaultRegistry.Register(t, s); err != nil {
		panic(err)
	}
}

// Register adds or replaces the strategy for t.
func (r *Registry) Register(t DriveType, s Strategy) error {
	if t == Unknown {
		return utils.NewConfigurationError("cannot register a strategy for the unknown drive type")
	}
	if s == nil {
		return utils.NewConfigurationError("nil strategy for drive type %s", t)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[t] = s
	return nil
}

// Lookup returns the strategy for t, or a configuration error if none is registered.
func (r *Registry) Lookup(t DriveType) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[t]
	if !ok {
		return nil, utils.NewConfigurationError("no strategy registered for drive type %s", t)
	}
	return s, nil
}

// Types lists the registered drive types in ascending order.
func (r *Registry) Types() []DriveType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]DriveType, 0, len(r.strategies))
	for t := range r.strategies {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := NewRegistry()
	for t, s := range r.strategies {
		clone.strategies[t] = s
	}
	return clone
}

// Dispatch resolves t and runs its strategy on snapshot. Unknown drive types and snapshots the
// strategy cannot run on are configuration errors; no command set is returned with an error.
func (r *Registry) Dispatch(t DriveType, snapshot input.Snapshot, actuators int) (motor.CommandSet, error) {
	s, err := r.Lookup(t)
	if err != nil {
		return nil, err
	}
	if err := s.Requirements().Check(snapshot.Shape(), actuators); err != nil {
		return nil, err
	}
	return dispatch(t, s, snapshot, actuators)
}

func dispatch(t DriveType, s Strategy, snapshot input.Snapshot, actuators int) (motor.CommandSet, error) {
	commands, err := s.Dispatch(snapshot, actuators)
	if err != nil {
		if utils.IsConfigurationError(err) || utils.IsSensorUnavailable(err) {
			return nil, err
		}
		return nil, utils.NewConfigurationError("%s strategy: %v", t, err)
	}
	if len(commands) != actuators {
		return nil, utils.NewConfigurationError("%s strategy produced %d commands for %d actuators", t, len(commands), actuators)
	}
	return commands, nil
}
