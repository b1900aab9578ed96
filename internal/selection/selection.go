// Package selection provides the survivor-selection operator family. A
// selector trims the post-crossover population back to the target size,
// returning dropped carriers to the genotype's recycling bin.
package selection

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/tomhoffer/evolvium/internal/chromosome"
	"github.com/tomhoffer/evolvium/internal/fitness"
	"github.com/tomhoffer/evolvium/internal/genotype"
	"github.com/tomhoffer/evolvium/internal/population"
)

// ISelector defines the interface for survivor selection.
type ISelector[A comparable] interface {
	// Select reduces pop to at most targetPopulationSize chromosomes
	// under the fitness ordering, releasing the dropped carriers.
	Select(g genotype.Genotype[A], pop *population.Population[A], ordering fitness.Ordering, targetPopulationSize int, rng *rand.Rand)
}

// SelectionError represents an invalid selector configuration.
// Message provides a summary of the error, while Wrapped contains the
// underlying cause, if present.
type SelectionError struct {
	// Message describes the error at a high level.
	Message string
	// Wrapped holds the underlying error that triggered this error. Can be nil.
	Wrapped error
}

// Error implements the error interface.
func (e *SelectionError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Wrapped)
	}
	return e.Message
}

// Unwrap enables errors.Is and errors.As to traverse the error chain.
func (e *SelectionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Wrapped
}

// NewSelectionError constructs a *SelectionError with the provided message and wrapped error.
func NewSelectionError(message string, wrapped error) *SelectionError {
	return &SelectionError{
		Message: message,
		Wrapped: wrapped,
	}
}

// Elite keeps the fittest chromosomes, stable under ties, and drops the
// rest. Strong pressure, weak diversity.
type Elite[A comparable] struct{}

// NewElite creates an Elite selector.
func NewElite[A comparable]() *Elite[A] {
	return &Elite[A]{}
}

// Select implements ISelector.
func (s *Elite[A]) Select(g genotype.Genotype[A], pop *population.Population[A], ordering fitness.Ordering, targetPopulationSize int, rng *rand.Rand) {
	sort.SliceStable(pop.Chromosomes, func(i, j int) bool {
		return fitness.CompareChromosomes(ordering, pop.Chromosomes[i], pop.Chromosomes[j]) > 0
	})
	if pop.Size() <= targetPopulationSize {
		return
	}
	for _, dropped := range pop.Chromosomes[targetPopulationSize:] {
		g.ReleaseChromosome(dropped)
	}
	for i := targetPopulationSize; i < len(pop.Chromosomes); i++ {
		pop.Chromosomes[i] = nil
	}
	pop.Chromosomes = pop.Chromosomes[:targetPopulationSize]
}

// Tournament runs targetPopulationSize independent tournaments, each
// sampling k chromosomes without replacement from the remaining pool and
// keeping the best. Softer pressure than Elite, which preserves diversity
// and avoids local-optimum lock-in.
type Tournament[A comparable] struct {
	k int
}

// NewTournament creates a Tournament selector with the given tournament
// size.
func NewTournament[A comparable](k int) (*Tournament[A], error) {
	if k <= 0 {
		return nil, NewSelectionError(fmt.Sprintf("tournament size must be positive, got %d", k), nil)
	}
	return &Tournament[A]{k: k}, nil
}

// Select implements ISelector.
func (s *Tournament[A]) Select(g genotype.Genotype[A], pop *population.Population[A], ordering fitness.Ordering, targetPopulationSize int, rng *rand.Rand) {
	pool := pop.Chromosomes
	if len(pool) <= targetPopulationSize {
		return
	}
	winners := make([]*chromosome.Chromosome[A], 0, targetPopulationSize)
	for len(winners) < targetPopulationSize && len(pool) > 0 {
		k := s.k
		if k > len(pool) {
			k = len(pool)
		}
		seen := make(map[int]struct{}, k)
		winnerIndex := -1
		for len(seen) < k {
			competitorIndex := rng.Intn(len(pool))
			if _, dup := seen[competitorIndex]; dup {
				continue
			}
			seen[competitorIndex] = struct{}{}
			if winnerIndex < 0 || fitness.CompareChromosomes(ordering, pool[competitorIndex], pool[winnerIndex]) > 0 {
				winnerIndex = competitorIndex
			}
		}
		winners = append(winners, pool[winnerIndex])
		pool[winnerIndex] = pool[len(pool)-1]
		pool[len(pool)-1] = nil
		pool = pool[:len(pool)-1]
	}
	for _, dropped := range pool {
		g.ReleaseChromosome(dropped)
	}
	pop.Chromosomes = winners
}
