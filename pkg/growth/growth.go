// Package growth decides how much capacity an array store receives when it
// has to grow.
package growth

import (
	"flag"
	"fmt"
	"math"
)

const (
	// DefaultFloor is the capacity given to any store that has to grow
	// below it.
	DefaultFloor = 16
	// DefaultFactor multiplies the current capacity on each growth.
	DefaultFactor = 2
)

// Policy computes the capacity of a grown store. Capacity must return a
// value >= needed and depend only on its arguments.
type Policy interface {
	Capacity(current, needed int) int
}

// Geometric grows by Factor with a minimum of Floor slots. When multiplying
// the current capacity is not enough, exactly needed is returned.
type Geometric struct {
	Floor  int
	Factor int
}

// Default returns the geometric policy with the default floor and factor.
func Default() Geometric {
	return Geometric{Floor: DefaultFloor, Factor: DefaultFactor}
}

func (g Geometric) Capacity(current, needed int) int {
	if needed <= 0 {
		return 0
	}
	if needed < g.Floor {
		return g.Floor
	}
	grown := current
	if current > 0 && g.Factor > 1 {
		if current > math.MaxInt/g.Factor {
			grown = math.MaxInt
		} else {
			grown = current * g.Factor
		}
	}
	if grown >= needed {
		return grown
	}
	return needed
}

// Exact never over-allocates.
type Exact struct{}

func (Exact) Capacity(_, needed int) int {
	if needed < 0 {
		return 0
	}
	return needed
}

// Config is the flag-configurable form of a Policy.
type Config struct {
	Floor  int
	Factor int
	Exact  bool
}

// RegisterFlags registers flags.
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	cfg.RegisterFlagsWithPrefix(f, "growth.")
}

// RegisterFlagsWithPrefix registers flags with the given prefix.
func (cfg *Config) RegisterFlagsWithPrefix(f *flag.FlagSet, prefix string) {
	f.IntVar(&cfg.Floor, prefix+"floor", DefaultFloor, "Minimum capacity allocated when a store grows.")
	f.IntVar(&cfg.Factor, prefix+"factor", DefaultFactor, "Multiplier applied to the current capacity when a store grows.")
	f.BoolVar(&cfg.Exact, prefix+"exact", false, "Grow stores to exactly the required size.")
}

// Validate the config.
func (cfg *Config) Validate() error {
	if cfg.Exact {
		return nil
	}
	if cfg.Floor < 0 {
		return fmt.Errorf("growth floor must be non-negative, got %d", cfg.Floor)
	}
	if cfg.Factor < 2 {
		return fmt.Errorf("growth factor must be at least 2, got %d", cfg.Factor)
	}
	return nil
}

// Policy returns the policy described by the config.
func (cfg *Config) Policy() Policy {
	if cfg.Exact {
		return Exact{}
	}
	return Geometric{Floor: cfg.Floor, Factor: cfg.Factor}
}
