package integrators

import (
	"sort"

	"github.com/MPA2620/DSML-Final-Project/internal/dynamo"
)

var factories = map[string]func() dynamo.Integrator{
	"euler": func() dynamo.Integrator { return NewEuler() },
	"rk4":   func() dynamo.Integrator { return NewRK4() },
	"rk23":  func() dynamo.Integrator { return NewRK23() },
	"rk45":  func() dynamo.Integrator { return NewRK45() },
}

// Lookup returns a fresh integrator by name. Adaptive pairs also implement
// dynamo.AdaptiveIntegrator.
func Lookup(name string) (dynamo.Integrator, error) {
	fn, ok := factories[name]
	if !ok {
		return nil, dynamo.InvalidArgument("unknown integrator: %s", name)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsAdaptive reports whether the named integrator carries an error estimate.
func IsAdaptive(name string) bool {
	integ, err := Lookup(name)
	if err != nil {
		return false
	}
	_, ok := integ.(dynamo.AdaptiveIntegrator)
	return ok
}
