// Package crossover provides the recombination operator family for the
// generational strategy. Each operator grows the selected parent population
// with newborn offspring, drawing carriers from the genotype's recycling bin;
// the subsequent selection phase trims back to the target size.
package crossover

import (
	"fmt"
	"math/rand"

	"github.com/tomhoffer/evolvium/internal/chromosome"
	"github.com/tomhoffer/evolvium/internal/genotype"
	"github.com/tomhoffer/evolvium/internal/population"
)

// ICrossover defines the interface for recombination operators.
type ICrossover[A comparable] interface {
	// Crossover produces the next generation's candidate population:
	// offspring up to targetPopulationSize plus the retained share of
	// parents.
	Crossover(g genotype.EvolveGenotype[A], pop *population.Population[A], targetPopulationSize int, rng *rand.Rand)

	// RequiresGeneCrossover reports whether the operator needs gene or
	// point crossover support from the genotype. Unique variants only
	// accept operators that do not.
	RequiresGeneCrossover() bool
}

// CrossoverError represents an invalid crossover configuration.
// Message provides a summary of the error, while Wrapped contains the
// underlying cause, if present.
type CrossoverError struct {
	// Message describes the error at a high level.
	Message string
	// Wrapped holds the underlying error that triggered this error. Can be nil.
	Wrapped error
}

// Error implements the error interface.
func (e *CrossoverError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Wrapped)
	}
	return e.Message
}

// Unwrap enables errors.Is and errors.As to traverse the error chain.
func (e *CrossoverError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Wrapped
}

// NewCrossoverError constructs a *CrossoverError with the provided message and wrapped error.
func NewCrossoverError(message string, wrapped error) *CrossoverError {
	return &CrossoverError{
		Message: message,
		Wrapped: wrapped,
	}
}

func validateSelectionRate(rate float64) error {
	if rate < 0 || rate > 1 {
		return NewCrossoverError(fmt.Sprintf("selection rate must be between 0 and 1, got %f", rate), nil)
	}
	return nil
}

// breed retains the leading selectionRate share of parents, then appends
// offspring pairs cloned from consecutive parent pairs (cycling) until
// targetPopulationSize children exist. recombine mixes each offspring pair
// in place; nil leaves the clones untouched.
func breed[A comparable](
	g genotype.EvolveGenotype[A],
	pop *population.Population[A],
	targetPopulationSize int,
	selectionRate float64,
	rng *rand.Rand,
	recombine func(child1, child2 *chromosome.Chromosome[A]),
) {
	parents := pop.Chromosomes
	if len(parents) == 0 {
		return
	}
	keep := int(selectionRate*float64(len(parents)) + 0.5)
	if keep > len(parents) {
		keep = len(parents)
	}

	next := make([]*chromosome.Chromosome[A], 0, keep+targetPopulationSize)
	next = append(next, parents[:keep]...)

	children := 0
	cursor := 0
	for children < targetPopulationSize {
		father := parents[cursor%len(parents)]
		mother := parents[(cursor+1)%len(parents)]
		cursor += 2

		child1 := g.NewChromosomeFrom(father)
		child2 := g.NewChromosomeFrom(mother)
		if recombine != nil {
			recombine(child1, child2)
		}
		next = append(next, child1)
		children += 2
		if children <= targetPopulationSize {
			next = append(next, child2)
		} else {
			g.ReleaseChromosome(child2)
		}
	}

	for _, dropped := range parents[keep:] {
		g.ReleaseChromosome(dropped)
	}
	pop.Chromosomes = next
}

// Clone pairs up parents and emits newborn clones without gene exchange.
// Legal for every genotype, including the unique variants.
type Clone[A comparable] struct {
	selectionRate float64
}

// NewClone creates a Clone crossover.
func NewClone[A comparable](selectionRate float64) (*Clone[A], error) {
	if err := validateSelectionRate(selectionRate); err != nil {
		return nil, err
	}
	return &Clone[A]{selectionRate: selectionRate}, nil
}

// Crossover implements ICrossover.
func (x *Clone[A]) Crossover(g genotype.EvolveGenotype[A], pop *population.Population[A], targetPopulationSize int, rng *rand.Rand) {
	breed(g, pop, targetPopulationSize, x.selectionRate, rng, nil)
}

// RequiresGeneCrossover implements ICrossover.
func (x *Clone[A]) RequiresGeneCrossover() bool {
	return false
}

// Rejuvenate resets the age of the selected share of parents without any
// gene change, shielding them from the max-age cull. Legal for every
// genotype.
type Rejuvenate[A comparable] struct {
	selectionRate float64
}

// NewRejuvenate creates a Rejuvenate crossover.
func NewRejuvenate[A comparable](selectionRate float64) (*Rejuvenate[A], error) {
	if err := validateSelectionRate(selectionRate); err != nil {
		return nil, err
	}
	return &Rejuvenate[A]{selectionRate: selectionRate}, nil
}

// Crossover implements ICrossover.
func (x *Rejuvenate[A]) Crossover(g genotype.EvolveGenotype[A], pop *population.Population[A], targetPopulationSize int, rng *rand.Rand) {
	count := int(x.selectionRate*float64(pop.Size()) + 0.5)
	for _, c := range pop.Chromosomes {
		if count == 0 {
			break
		}
		c.Age = 0
		count--
	}
}

// RequiresGeneCrossover implements ICrossover.
func (x *Rejuvenate[A]) RequiresGeneCrossover() bool {
	return false
}

// SingleGene swaps one gene position between each offspring pair.
type SingleGene[A comparable] struct {
	selectionRate float64
}

// NewSingleGene creates a SingleGene crossover.
func NewSingleGene[A comparable](selectionRate float64) (*SingleGene[A], error) {
	if err := validateSelectionRate(selectionRate); err != nil {
		return nil, err
	}
	return &SingleGene[A]{selectionRate: selectionRate}, nil
}

// Crossover implements ICrossover.
func (x *SingleGene[A]) Crossover(g genotype.EvolveGenotype[A], pop *population.Population[A], targetPopulationSize int, rng *rand.Rand) {
	breed(g, pop, targetPopulationSize, x.selectionRate, rng, func(c1, c2 *chromosome.Chromosome[A]) {
		g.CrossoverGenes(c1, c2, 1, true, rng)
	})
}

// RequiresGeneCrossover implements ICrossover.
func (x *SingleGene[A]) RequiresGeneCrossover() bool {
	return true
}

// MultiGene swaps n distinct gene positions between each offspring pair.
type MultiGene[A comparable] struct {
	n             int
	selectionRate float64
}

// NewMultiGene creates a MultiGene crossover.
func NewMultiGene[A comparable](n int, selectionRate float64) (*MultiGene[A], error) {
	if n <= 0 {
		return nil, NewCrossoverError(fmt.Sprintf("number of crossover genes must be positive, got %d", n), nil)
	}
	if err := validateSelectionRate(selectionRate); err != nil {
		return nil, err
	}
	return &MultiGene[A]{n: n, selectionRate: selectionRate}, nil
}

// Crossover implements ICrossover.
func (x *MultiGene[A]) Crossover(g genotype.EvolveGenotype[A], pop *population.Population[A], targetPopulationSize int, rng *rand.Rand) {
	breed(g, pop, targetPopulationSize, x.selectionRate, rng, func(c1, c2 *chromosome.Chromosome[A]) {
		g.CrossoverGenes(c1, c2, x.n, false, rng)
	})
}

// RequiresGeneCrossover implements ICrossover.
func (x *MultiGene[A]) RequiresGeneCrossover() bool {
	return true
}

// Uniform swaps each gene position between the offspring pair with
// probability one half.
type Uniform[A comparable] struct {
	selectionRate float64
}

// NewUniform creates a Uniform crossover.
func NewUniform[A comparable](selectionRate float64) (*Uniform[A], error) {
	if err := validateSelectionRate(selectionRate); err != nil {
		return nil, err
	}
	return &Uniform[A]{selectionRate: selectionRate}, nil
}

// Crossover implements ICrossover.
func (x *Uniform[A]) Crossover(g genotype.EvolveGenotype[A], pop *population.Population[A], targetPopulationSize int, rng *rand.Rand) {
	breed(g, pop, targetPopulationSize, x.selectionRate, rng, func(c1, c2 *chromosome.Chromosome[A]) {
		// Binomial draw keeps the per-position swap probability at one
		// half while reusing the genotype's distinct-position sampling.
		n := 0
		for i := 0; i < g.GenesSize(); i++ {
			if rng.Intn(2) == 1 {
				n++
			}
		}
		if n > 0 {
			g.CrossoverGenes(c1, c2, n, false, rng)
		}
	})
}

// RequiresGeneCrossover implements ICrossover.
func (x *Uniform[A]) RequiresGeneCrossover() bool {
	return true
}

// SinglePoint swaps the suffix after one crossover point between each
// offspring pair.
type SinglePoint[A comparable] struct {
	selectionRate float64
}

// NewSinglePoint creates a SinglePoint crossover.
func NewSinglePoint[A comparable](selectionRate float64) (*SinglePoint[A], error) {
	if err := validateSelectionRate(selectionRate); err != nil {
		return nil, err
	}
	return &SinglePoint[A]{selectionRate: selectionRate}, nil
}

// Crossover implements ICrossover.
func (x *SinglePoint[A]) Crossover(g genotype.EvolveGenotype[A], pop *population.Population[A], targetPopulationSize int, rng *rand.Rand) {
	breed(g, pop, targetPopulationSize, x.selectionRate, rng, func(c1, c2 *chromosome.Chromosome[A]) {
		g.CrossoverPoints(c1, c2, 1, true, rng)
	})
}

// RequiresGeneCrossover implements ICrossover.
func (x *SinglePoint[A]) RequiresGeneCrossover() bool {
	return true
}

// MultiPoint swaps the slices between n crossover points between each
// offspring pair.
type MultiPoint[A comparable] struct {
	n             int
	selectionRate float64
}

// NewMultiPoint creates a MultiPoint crossover.
func NewMultiPoint[A comparable](n int, selectionRate float64) (*MultiPoint[A], error) {
	if n <= 0 {
		return nil, NewCrossoverError(fmt.Sprintf("number of crossover points must be positive, got %d", n), nil)
	}
	if err := validateSelectionRate(selectionRate); err != nil {
		return nil, err
	}
	return &MultiPoint[A]{n: n, selectionRate: selectionRate}, nil
}

// Crossover implements ICrossover.
func (x *MultiPoint[A]) Crossover(g genotype.EvolveGenotype[A], pop *population.Population[A], targetPopulationSize int, rng *rand.Rand) {
	breed(g, pop, targetPopulationSize, x.selectionRate, rng, func(c1, c2 *chromosome.Chromosome[A]) {
		g.CrossoverPoints(c1, c2, x.n, false, rng)
	})
}

// RequiresGeneCrossover implements ICrossover.
func (x *MultiPoint[A]) RequiresGeneCrossover() bool {
	return true
}
