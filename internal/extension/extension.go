// Package extension provides the diversity-intervention operator family,
// applied once per generation before crossover. Extensions watch the
// population's distinct fitness-score count and intervene when diversity
// collapses below a threshold.
package extension

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/tomhoffer/evolvium/internal/chromosome"
	"github.com/tomhoffer/evolvium/internal/fitness"
	"github.com/tomhoffer/evolvium/internal/genotype"
	"github.com/tomhoffer/evolvium/internal/population"
)

// IExtension defines the interface for diversity interventions.
type IExtension[A comparable] interface {
	// Extend inspects pop and may shrink or perturb it in place.
	Extend(g genotype.EvolveGenotype[A], pop *population.Population[A], ordering fitness.Ordering, scaleIndex int, rng *rand.Rand)
}

// ExtensionError represents an invalid extension configuration.
// Message provides a summary of the error, while Wrapped contains the
// underlying cause, if present.
type ExtensionError struct {
	// Message describes the error at a high level.
	Message string
	// Wrapped holds the underlying error that triggered this error. Can be nil.
	Wrapped error
}

// Error implements the error interface.
func (e *ExtensionError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Wrapped)
	}
	return e.Message
}

// Unwrap enables errors.Is and errors.As to traverse the error chain.
func (e *ExtensionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Wrapped
}

// NewExtensionError constructs a *ExtensionError with the provided message and wrapped error.
func NewExtensionError(message string, wrapped error) *ExtensionError {
	return &ExtensionError{
		Message: message,
		Wrapped: wrapped,
	}
}

// Noop never intervenes.
type Noop[A comparable] struct{}

// NewNoop creates a Noop extension.
func NewNoop[A comparable]() *Noop[A] {
	return &Noop[A]{}
}

// Extend implements IExtension.
func (x *Noop[A]) Extend(g genotype.EvolveGenotype[A], pop *population.Population[A], ordering fitness.Ordering, scaleIndex int, rng *rand.Rand) {
}

// MassExtinction randomly culls the population down to a survival fraction
// when the distinct fitness-score count drops to the threshold, making room
// for fresh lineages.
type MassExtinction[A comparable] struct {
	cardinalityThreshold int
	survivalRate         float64
}

// NewMassExtinction creates a MassExtinction extension.
func NewMassExtinction[A comparable](cardinalityThreshold int, survivalRate float64) (*MassExtinction[A], error) {
	if cardinalityThreshold <= 0 {
		return nil, NewExtensionError(fmt.Sprintf("cardinality threshold must be positive, got %d", cardinalityThreshold), nil)
	}
	if survivalRate < 0 || survivalRate > 1 {
		return nil, NewExtensionError(fmt.Sprintf("survival rate must be between 0 and 1, got %f", survivalRate), nil)
	}
	return &MassExtinction[A]{cardinalityThreshold: cardinalityThreshold, survivalRate: survivalRate}, nil
}

// Extend implements IExtension.
func (x *MassExtinction[A]) Extend(g genotype.EvolveGenotype[A], pop *population.Population[A], ordering fitness.Ordering, scaleIndex int, rng *rand.Rand) {
	if pop.FitnessScoreCardinality() > x.cardinalityThreshold {
		return
	}
	survivors := int(x.survivalRate*float64(pop.Size()) + 0.5)
	if survivors < 2 {
		survivors = 2
	}
	if survivors >= pop.Size() {
		return
	}
	pop.Shuffle(rng)
	for _, dropped := range pop.Chromosomes[survivors:] {
		g.ReleaseChromosome(dropped)
	}
	for i := survivors; i < len(pop.Chromosomes); i++ {
		pop.Chromosomes[i] = nil
	}
	pop.Chromosomes = pop.Chromosomes[:survivors]
}

// MassDegeneration perturbs every chromosome with extra mutation rounds when
// diversity collapses, instead of culling.
type MassDegeneration[A comparable] struct {
	cardinalityThreshold int
	rounds               int
}

// NewMassDegeneration creates a MassDegeneration extension.
func NewMassDegeneration[A comparable](cardinalityThreshold, rounds int) (*MassDegeneration[A], error) {
	if cardinalityThreshold <= 0 {
		return nil, NewExtensionError(fmt.Sprintf("cardinality threshold must be positive, got %d", cardinalityThreshold), nil)
	}
	if rounds <= 0 {
		return nil, NewExtensionError(fmt.Sprintf("number of rounds must be positive, got %d", rounds), nil)
	}
	return &MassDegeneration[A]{cardinalityThreshold: cardinalityThreshold, rounds: rounds}, nil
}

// Extend implements IExtension.
func (x *MassDegeneration[A]) Extend(g genotype.EvolveGenotype[A], pop *population.Population[A], ordering fitness.Ordering, scaleIndex int, rng *rand.Rand) {
	if pop.FitnessScoreCardinality() > x.cardinalityThreshold {
		return
	}
	for _, c := range pop.Chromosomes {
		for round := 0; round < x.rounds; round++ {
			g.MutateChromosome(c, 1, true, scaleIndex, rng)
		}
	}
}

// MassGenesis drops the population to its two best chromosomes, restarting
// the search from near scratch while keeping the strongest genetic material.
type MassGenesis[A comparable] struct {
	cardinalityThreshold int
}

// NewMassGenesis creates a MassGenesis extension.
func NewMassGenesis[A comparable](cardinalityThreshold int) (*MassGenesis[A], error) {
	if cardinalityThreshold <= 0 {
		return nil, NewExtensionError(fmt.Sprintf("cardinality threshold must be positive, got %d", cardinalityThreshold), nil)
	}
	return &MassGenesis[A]{cardinalityThreshold: cardinalityThreshold}, nil
}

// Extend implements IExtension.
func (x *MassGenesis[A]) Extend(g genotype.EvolveGenotype[A], pop *population.Population[A], ordering fitness.Ordering, scaleIndex int, rng *rand.Rand) {
	if pop.FitnessScoreCardinality() > x.cardinalityThreshold {
		return
	}
	if pop.Size() <= 2 {
		return
	}
	sort.SliceStable(pop.Chromosomes, func(i, j int) bool {
		return fitness.CompareChromosomes(ordering, pop.Chromosomes[i], pop.Chromosomes[j]) > 0
	})
	for _, dropped := range pop.Chromosomes[2:] {
		g.ReleaseChromosome(dropped)
	}
	for i := 2; i < len(pop.Chromosomes); i++ {
		pop.Chromosomes[i] = nil
	}
	pop.Chromosomes = pop.Chromosomes[:2]
}

// MassDeduplication removes chromosomes whose genes hash duplicates an
// earlier one. Requires the genotype to have genes hashing enabled; without
// hashes it never removes anything.
type MassDeduplication[A comparable] struct{}

// NewMassDeduplication creates a MassDeduplication extension.
func NewMassDeduplication[A comparable]() *MassDeduplication[A] {
	return &MassDeduplication[A]{}
}

// Extend implements IExtension.
func (x *MassDeduplication[A]) Extend(g genotype.EvolveGenotype[A], pop *population.Population[A], ordering fitness.Ordering, scaleIndex int, rng *rand.Rand) {
	seen := make(map[uint64]struct{}, pop.Size())
	kept := pop.Chromosomes[:0]
	var dropped []*chromosome.Chromosome[A]
	for _, c := range pop.Chromosomes {
		if c.HasGenesHash {
			if _, dup := seen[c.GenesHash]; dup {
				dropped = append(dropped, c)
				continue
			}
			seen[c.GenesHash] = struct{}{}
		}
		kept = append(kept, c)
	}
	for i := len(kept); i < len(pop.Chromosomes); i++ {
		pop.Chromosomes[i] = nil
	}
	pop.Chromosomes = kept
	for _, c := range dropped {
		g.ReleaseChromosome(c)
	}
}
