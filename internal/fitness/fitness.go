// Package fitness defines the fitness contract between the search strategies
// and user-supplied objective functions, along with the evaluation runner and
// the per-fingerprint score cache.
package fitness

import (
	"github.com/tomhoffer/evolvium/internal/chromosome"
	"github.com/tomhoffer/evolvium/internal/genotype"
	"github.com/tomhoffer/evolvium/internal/population"
)

// Value is the score type attached to chromosomes. Callers optimizing a
// floating-point objective scale it by a precision factor.
type Value = int64

// Score pairs a value with its validity, mirroring a fitness function's
// right to decline scoring a genome.
type Score struct {
	Value Value
	Valid bool
}

// Fitness is the user-supplied objective. Implementations must be
// deterministic in the genes and their own internal state, and must not have
// observable side effects; the parallel runner clones them per worker when
// they carry mutable scratch state.
type Fitness[A comparable] interface {
	// CalculateForChromosome scores one chromosome. Returning false
	// declines the genome; an absent score sorts to the loser end under
	// either fitness ordering.
	CalculateForChromosome(c *chromosome.Chromosome[A], g genotype.Genotype[A]) (Value, bool)
}

// PopulationCalculator is an optional optimization for fitness functions
// that evaluate a whole population jointly (matrix math over a backing
// store). The returned slice aligns with the population's chromosomes.
type PopulationCalculator[A comparable] interface {
	CalculateForPopulation(pop *population.Population[A], g genotype.Genotype[A]) []Score
}

// Cloner is implemented by fitness functions carrying mutable scratch state.
// The parallel runner gives each worker its own clone.
type Cloner[A comparable] interface {
	CloneFitness() Fitness[A]
}

// Ordering decides whether higher or lower fitness values win.
type Ordering int

const (
	// Maximize treats higher scores as better.
	Maximize Ordering = iota
	// Minimize treats lower scores as better.
	Minimize
)

// String returns the configuration name of the ordering.
func (o Ordering) String() string {
	if o == Minimize {
		return "minimize"
	}
	return "maximize"
}

// CompareValues returns a positive value when a beats b under the ordering,
// negative when b beats a, and zero on ties. A missing score always loses to
// a present one.
func CompareValues(o Ordering, a Value, aValid bool, b Value, bValid bool) int {
	switch {
	case !aValid && !bValid:
		return 0
	case !aValid:
		return -1
	case !bValid:
		return 1
	case a == b:
		return 0
	}
	better := a > b
	if o == Minimize {
		better = a < b
	}
	if better {
		return 1
	}
	return -1
}

// CompareChromosomes compares two chromosomes' fitness scores under the
// ordering.
func CompareChromosomes[A comparable](o Ordering, a, b *chromosome.Chromosome[A]) int {
	return CompareValues(o, a.FitnessScore, a.HasFitnessScore, b.FitnessScore, b.HasFitnessScore)
}

// Satisfies reports whether score reaches target under the ordering: at
// least target when maximizing, at most target when minimizing.
func Satisfies(o Ordering, score, target Value) bool {
	if o == Minimize {
		return score <= target
	}
	return score >= target
}
