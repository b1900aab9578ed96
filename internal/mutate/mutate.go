// Package mutate provides the mutation operator family for the generational
// strategy. Mutators visit the newborn chromosomes of a generation and route
// all gene changes through the owning genotype.
package mutate

import (
	"fmt"
	"math/rand"

	"github.com/tomhoffer/evolvium/internal/genotype"
	"github.com/tomhoffer/evolvium/internal/population"
)

// IMutator defines the interface for probabilistic gene mutation.
type IMutator[A comparable] interface {
	// Mutate applies the operator to the newborn chromosomes of pop.
	// scaleIndex is forwarded to scaled range genotypes.
	Mutate(g genotype.EvolveGenotype[A], pop *population.Population[A], scaleIndex int, rng *rand.Rand)
}

// MutationError represents an invalid mutator configuration.
// Message provides a summary of the error, while Wrapped contains the
// underlying cause, if present.
type MutationError struct {
	// Message describes the error at a high level.
	Message string
	// Wrapped holds the underlying error that triggered this error. Can be nil.
	Wrapped error
}

// Error implements the error interface.
func (e *MutationError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Wrapped)
	}
	return e.Message
}

// Unwrap enables errors.Is and errors.As to traverse the error chain.
func (e *MutationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Wrapped
}

// NewMutationError constructs a *MutationError with the provided message and wrapped error.
func NewMutationError(message string, wrapped error) *MutationError {
	return &MutationError{
		Message: message,
		Wrapped: wrapped,
	}
}

func validateProbability(p float64) error {
	if p < 0 || p > 1 {
		return NewMutationError(fmt.Sprintf("mutation probability must be between 0 and 1, got %f", p), nil)
	}
	return nil
}

// SingleGene mutates exactly one gene of each newborn chromosome with
// probability p.
type SingleGene[A comparable] struct {
	p float64
}

// NewSingleGene creates a SingleGene mutator.
func NewSingleGene[A comparable](p float64) (*SingleGene[A], error) {
	if err := validateProbability(p); err != nil {
		return nil, err
	}
	return &SingleGene[A]{p: p}, nil
}

// Mutate implements IMutator.
func (m *SingleGene[A]) Mutate(g genotype.EvolveGenotype[A], pop *population.Population[A], scaleIndex int, rng *rand.Rand) {
	for _, c := range pop.Chromosomes {
		if !c.IsNewborn() {
			continue
		}
		if rng.Float64() < m.p {
			g.MutateChromosome(c, 1, true, scaleIndex, rng)
		}
	}
}

// MultiGene mutates n distinct genes of each newborn chromosome with
// probability p.
type MultiGene[A comparable] struct {
	n int
	p float64
}

// NewMultiGene creates a MultiGene mutator.
func NewMultiGene[A comparable](n int, p float64) (*MultiGene[A], error) {
	if n <= 0 {
		return nil, NewMutationError(fmt.Sprintf("number of mutated genes must be positive, got %d", n), nil)
	}
	if err := validateProbability(p); err != nil {
		return nil, err
	}
	return &MultiGene[A]{n: n, p: p}, nil
}

// Mutate implements IMutator.
func (m *MultiGene[A]) Mutate(g genotype.EvolveGenotype[A], pop *population.Population[A], scaleIndex int, rng *rand.Rand) {
	for _, c := range pop.Chromosomes {
		if !c.IsNewborn() {
			continue
		}
		if rng.Float64() < m.p {
			g.MutateChromosome(c, m.n, false, scaleIndex, rng)
		}
	}
}

// MultiGeneRange mutates a per-chromosome number of genes drawn uniformly
// from [lo, hi], with probability p.
type MultiGeneRange[A comparable] struct {
	lo, hi int
	p      float64
}

// NewMultiGeneRange creates a MultiGeneRange mutator.
func NewMultiGeneRange[A comparable](lo, hi int, p float64) (*MultiGeneRange[A], error) {
	if lo < 0 || hi < lo {
		return nil, NewMutationError(fmt.Sprintf("invalid mutated genes range [%d, %d]", lo, hi), nil)
	}
	if err := validateProbability(p); err != nil {
		return nil, err
	}
	return &MultiGeneRange[A]{lo: lo, hi: hi, p: p}, nil
}

// Mutate implements IMutator.
func (m *MultiGeneRange[A]) Mutate(g genotype.EvolveGenotype[A], pop *population.Population[A], scaleIndex int, rng *rand.Rand) {
	for _, c := range pop.Chromosomes {
		if !c.IsNewborn() {
			continue
		}
		if rng.Float64() < m.p {
			n := m.lo + rng.Intn(m.hi-m.lo+1)
			g.MutateChromosome(c, n, false, scaleIndex, rng)
		}
	}
}

// SingleGeneDynamic mutates one gene per newborn with a probability that
// tracks population uniformity: when the fraction of chromosomes sharing the
// modal fitness score exceeds the target, pressure goes up by step, else
// down.
type SingleGeneDynamic[A comparable] struct {
	step             float64
	targetUniformity float64
	p                float64
}

// NewSingleGeneDynamic creates a SingleGeneDynamic mutator starting at zero
// mutation probability.
func NewSingleGeneDynamic[A comparable](step, targetUniformity float64) (*SingleGeneDynamic[A], error) {
	if step <= 0 {
		return nil, NewMutationError(fmt.Sprintf("dynamic mutation step must be positive, got %f", step), nil)
	}
	if err := validateProbability(targetUniformity); err != nil {
		return nil, err
	}
	return &SingleGeneDynamic[A]{step: step, targetUniformity: targetUniformity}, nil
}

// Probability exposes the current mutation probability.
func (m *SingleGeneDynamic[A]) Probability() float64 {
	return m.p
}

// Mutate implements IMutator.
func (m *SingleGeneDynamic[A]) Mutate(g genotype.EvolveGenotype[A], pop *population.Population[A], scaleIndex int, rng *rand.Rand) {
	if pop.FitnessScoreUniformity() > m.targetUniformity {
		m.p += m.step
	} else {
		m.p -= m.step
	}
	if m.p < 0 {
		m.p = 0
	}
	if m.p > 1 {
		m.p = 1
	}
	for _, c := range pop.Chromosomes {
		if !c.IsNewborn() {
			continue
		}
		if rng.Float64() < m.p {
			g.MutateChromosome(c, 1, true, scaleIndex, rng)
		}
	}
}

// MultiGeneDynamic mutates a number of genes per newborn that tracks
// population uniformity, analogous to SingleGeneDynamic but adjusting the
// gene count instead of the probability.
type MultiGeneDynamic[A comparable] struct {
	step             int
	targetUniformity float64
	p                float64
	n                int
}

// NewMultiGeneDynamic creates a MultiGeneDynamic mutator applying with
// probability p and starting at zero mutated genes.
func NewMultiGeneDynamic[A comparable](step int, targetUniformity, p float64) (*MultiGeneDynamic[A], error) {
	if step <= 0 {
		return nil, NewMutationError(fmt.Sprintf("dynamic mutation step must be positive, got %d", step), nil)
	}
	if err := validateProbability(targetUniformity); err != nil {
		return nil, err
	}
	if err := validateProbability(p); err != nil {
		return nil, err
	}
	return &MultiGeneDynamic[A]{step: step, targetUniformity: targetUniformity, p: p}, nil
}

// Genes exposes the current number of mutated genes.
func (m *MultiGeneDynamic[A]) Genes() int {
	return m.n
}

// Mutate implements IMutator.
func (m *MultiGeneDynamic[A]) Mutate(g genotype.EvolveGenotype[A], pop *population.Population[A], scaleIndex int, rng *rand.Rand) {
	if pop.FitnessScoreUniformity() > m.targetUniformity {
		m.n += m.step
	} else {
		m.n -= m.step
	}
	if m.n < 0 {
		m.n = 0
	}
	if m.n > g.GenesSize() {
		m.n = g.GenesSize()
	}
	if m.n == 0 {
		return
	}
	for _, c := range pop.Chromosomes {
		if !c.IsNewborn() {
			continue
		}
		if rng.Float64() < m.p {
			g.MutateChromosome(c, m.n, false, scaleIndex, rng)
		}
	}
}
