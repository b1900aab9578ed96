// Package genotype implements the search-space descriptors and all
// genome-producing and genome-mutating operators. Seven variants cover the
// supported allele topologies: Binary, List, MultiList, Range, MultiRange,
// Unique and MultiUnique. Each variant doubles as the chromosome manager for
// its carriers, because only the genotype knows whether genes are owned or
// row-indexed into a matrix backing store.
package genotype

import (
	"fmt"
	"math/big"
	"math/rand"

	"github.com/tomhoffer/evolvium/internal/chromosome"
	"github.com/tomhoffer/evolvium/internal/population"
)

// MutationType selects how range-based genotypes move a gene during mutation.
type MutationType int

const (
	// MutationRandom replaces the gene with a uniform draw from the whole
	// allele range.
	MutationRandom MutationType = iota
	// MutationRelative adds a uniform draw from a symmetric mutation delta
	// range, clamped to the allele range.
	MutationRelative
	// MutationScaled adds either endpoint of the current scale's delta
	// range, clamped to the allele range. Scales narrow as the search
	// stalls.
	MutationScaled
)

// String returns the configuration name of the mutation type.
func (m MutationType) String() string {
	switch m {
	case MutationRandom:
		return "random"
	case MutationRelative:
		return "relative"
	case MutationScaled:
		return "scaled"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// StorageKind selects the physical representation of genes for range-based
// genotypes.
type StorageKind int

const (
	// StorageOwned gives every chromosome its own gene slice.
	StorageOwned StorageKind = iota
	// StorageStaticMatrix backs all chromosomes by one contiguous N*M
	// arena sized at build time. Exceeding M live chromosomes is a fatal
	// configuration error.
	StorageStaticMatrix
	// StorageDynamicMatrix backs chromosomes by an arena grown on demand.
	StorageDynamicMatrix
)

// Genotype is the uniform contract every variant satisfies: random sampling,
// mutation, best-genes capture and the chromosome-manager facade.
type Genotype[A comparable] interface {
	// GenesSize returns the number of genes per chromosome.
	GenesSize() int

	// GenesHashing reports whether genes fingerprints are maintained.
	GenesHashing() bool

	// MaxScaleIndex returns the index of the finest mutation scale, or -1
	// when the genotype is not scaled.
	MaxScaleIndex() int

	// NewRandomChromosome produces a chromosome with random genes, or with
	// the next seed genome when a seed list is configured. Carriers are
	// drawn from the recycling bin when available.
	NewRandomChromosome(rng *rand.Rand) *chromosome.Chromosome[A]

	// NewChromosomeFrom produces a fresh carrier holding a copy of src's
	// genes.
	NewChromosomeFrom(src *chromosome.Chromosome[A]) *chromosome.Chromosome[A]

	// ReleaseChromosome returns the carrier (and its backing-store row,
	// for matrix variants) to the bin for reuse.
	ReleaseChromosome(c *chromosome.Chromosome[A])

	// SetRandomGenes overwrites c's genes in place with a random genome
	// (or the next seed) and resets its state.
	SetRandomGenes(c *chromosome.Chromosome[A], rng *rand.Rand)

	// CopyGenes copies src's genes into dst without touching dst's state.
	CopyGenes(src, dst *chromosome.Chromosome[A])

	// MutateChromosome mutates n gene positions. When allowDuplicates is
	// false, min(n, genes size) distinct positions are used. scaleIndex is
	// only consulted by scaled range genotypes. Fitness is invalidated,
	// age reset and the genes hash recomputed.
	MutateChromosome(c *chromosome.Chromosome[A], n int, allowDuplicates bool, scaleIndex int, rng *rand.Rand)

	// SaveBestGenes copies c's genes into the genotype's best-genes
	// buffer.
	SaveBestGenes(c *chromosome.Chromosome[A])

	// LoadBestGenes writes the best-genes buffer back into c and resets
	// its state.
	LoadBestGenes(c *chromosome.Chromosome[A])

	// BestGenes exposes the best-genes buffer.
	BestGenes() []A

	// ResetChromosomeState invalidates fitness, zeroes age and recomputes
	// the genes hash when hashing is enabled.
	ResetChromosomeState(c *chromosome.Chromosome[A])
}

// EvolveGenotype adds the crossover capability used by the generational
// strategy. Unique variants keep the methods but report no support, because
// exchanging individual genes between permutations would break uniqueness.
type EvolveGenotype[A comparable] interface {
	Genotype[A]

	// SupportsGeneCrossover reports whether gene and point crossover are
	// legal for this variant.
	SupportsGeneCrossover() bool

	// CrossoverGenes swaps n gene positions between father and mother.
	CrossoverGenes(father, mother *chromosome.Chromosome[A], n int, allowDuplicates bool, rng *rand.Rand)

	// CrossoverPoints swaps the slices between n crossover points (and
	// from the last point to the end) between father and mother.
	CrossoverPoints(father, mother *chromosome.Chromosome[A], n int, allowDuplicates bool, rng *rand.Rand)
}

// HillClimbGenotype adds neighborhood enumeration for steepest-ascent search.
type HillClimbGenotype[A comparable] interface {
	Genotype[A]

	// FillNeighboringPopulation appends all scale-bounded neighbors of
	// base to pop. Neighbors that clamp back onto the base genome are
	// omitted.
	FillNeighboringPopulation(base *chromosome.Chromosome[A], pop *population.Population[A], scaleIndex int, rng *rand.Rand)

	// NeighboringPopulationSize returns the expected neighbor count, for
	// sizing the neighbor population.
	NeighboringPopulationSize() *big.Int
}

// PermutateGenotype adds exhaustive enumeration over a finite, factorizable
// space.
type PermutateGenotype[A comparable] interface {
	Genotype[A]

	// Permutable returns a ConfigError when the configuration cannot be
	// enumerated (range genotypes without scaled mutation).
	Permutable() error

	// ChromosomePermutationsSize returns the exact number of genomes in
	// the space as a big integer, for progress reporting.
	ChromosomePermutationsSize() *big.Int

	// ForEachPermutation calls fn with every genome in the space, reusing
	// a single scratch buffer between calls. Iteration stops when fn
	// returns false. Panics on a non-permutable configuration.
	ForEachPermutation(fn func(genes []A) bool)
}

// ConfigError represents an invalid genotype or strategy configuration,
// surfaced synchronously at build time.
// Message provides a summary of the error, while Wrapped contains the
// underlying cause, if present.
type ConfigError struct {
	// Message describes the error at a high level.
	Message string
	// Wrapped holds the underlying error that triggered this error. Can be nil.
	Wrapped error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Wrapped)
	}
	return e.Message
}

// Unwrap enables errors.Is and errors.As to traverse the error chain.
func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Wrapped
}

// NewConfigError constructs a *ConfigError with the provided message and wrapped error.
func NewConfigError(message string, wrapped error) *ConfigError {
	return &ConfigError{
		Message: message,
		Wrapped: wrapped,
	}
}

// samplePositions draws n gene positions in [0, size). With duplicates
// allowed the draws are independent; otherwise min(n, size) distinct
// positions are returned via index sampling.
func samplePositions(rng *rand.Rand, n, size int, allowDuplicates bool) []int {
	if n <= 0 || size <= 0 {
		return nil
	}
	if allowDuplicates {
		positions := make([]int, n)
		for i := range positions {
			positions[i] = rng.Intn(size)
		}
		return positions
	}
	if n >= size {
		return rng.Perm(size)
	}
	return rng.Perm(size)[:n]
}

// sampleWeightedPositions draws n positions weighted by the provided weights
// (range width for multi-range, list or segment size for multi-list and
// multi-unique). Without duplicates, a drawn position's weight is zeroed
// before the next draw.
func sampleWeightedPositions(rng *rand.Rand, n int, weights []float64, allowDuplicates bool) []int {
	size := len(weights)
	if n <= 0 || size == 0 {
		return nil
	}
	if !allowDuplicates && n > size {
		n = size
	}
	working := weights
	if !allowDuplicates {
		working = append([]float64(nil), weights...)
	}
	positions := make([]int, 0, n)
	for len(positions) < n {
		total := 0.0
		for _, w := range working {
			total += w
		}
		if total <= 0 {
			break
		}
		r := rng.Float64() * total
		idx := size - 1
		acc := 0.0
		for i, w := range working {
			acc += w
			if r < acc {
				idx = i
				break
			}
		}
		positions = append(positions, idx)
		if !allowDuplicates {
			working[idx] = 0
		}
	}
	return positions
}
