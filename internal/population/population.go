// Package population provides the ordered collection of chromosomes alive in
// one generation, with the statistical queries the strategies and extension
// operators need.
package population

import (
	"errors"
	"math/rand"

	"github.com/tomhoffer/evolvium/internal/chromosome"
)

// ErrPopulationEmpty indicates that a population has no chromosomes.
var ErrPopulationEmpty = errors.New("population is empty")

// Population is an ordered sequence of chromosome carriers. The target size
// is a strategy concern; the population itself grows and shrinks as the
// operators dictate.
type Population[A comparable] struct {
	Chromosomes []*chromosome.Chromosome[A]
}

// New wraps the provided chromosomes in a population.
func New[A comparable](chromosomes []*chromosome.Chromosome[A]) *Population[A] {
	return &Population[A]{Chromosomes: chromosomes}
}

// NewEmpty creates a population with capacity for the expected size.
func NewEmpty[A comparable](capacity int) *Population[A] {
	return &Population[A]{Chromosomes: make([]*chromosome.Chromosome[A], 0, capacity)}
}

// Size returns the number of live chromosomes.
func (p *Population[A]) Size() int {
	if p == nil {
		return 0
	}
	return len(p.Chromosomes)
}

// Push appends a chromosome.
func (p *Population[A]) Push(c *chromosome.Chromosome[A]) {
	p.Chromosomes = append(p.Chromosomes, c)
}

// Best returns the chromosome maximal under cmp, where cmp returns a positive
// value when a is fitter than b. Returns ErrPopulationEmpty for an empty
// population.
func (p *Population[A]) Best(cmp func(a, b *chromosome.Chromosome[A]) int) (*chromosome.Chromosome[A], error) {
	if p.Size() == 0 {
		return nil, ErrPopulationEmpty
	}
	best := p.Chromosomes[0]
	for _, c := range p.Chromosomes[1:] {
		if cmp(c, best) > 0 {
			best = c
		}
	}
	return best, nil
}

// IncrementAges ages every chromosome by one generation.
func (p *Population[A]) IncrementAges() {
	for _, c := range p.Chromosomes {
		c.Age++
	}
}

// FilterAge removes chromosomes older than maxAge in place, handing each
// removed carrier to release so its storage returns to the owner's bin.
func (p *Population[A]) FilterAge(maxAge int, release func(*chromosome.Chromosome[A])) {
	kept := p.Chromosomes[:0]
	for _, c := range p.Chromosomes {
		if c.Age > maxAge {
			release(c)
			continue
		}
		kept = append(kept, c)
	}
	for i := len(kept); i < len(p.Chromosomes); i++ {
		p.Chromosomes[i] = nil
	}
	p.Chromosomes = kept
}

// Shuffle randomizes the chromosome order. Used to randomize tie-breaks when
// equal-fitness replacement is enabled.
func (p *Population[A]) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(p.Chromosomes), func(i, j int) {
		p.Chromosomes[i], p.Chromosomes[j] = p.Chromosomes[j], p.Chromosomes[i]
	})
}

// FitnessScoreUniformity returns the fraction of evaluated chromosomes that
// share the modal fitness score. An unevaluated population has uniformity 0.
func (p *Population[A]) FitnessScoreUniformity() float64 {
	counts := make(map[int64]int)
	scored := 0
	for _, c := range p.Chromosomes {
		if c.HasFitnessScore {
			counts[c.FitnessScore]++
			scored++
		}
	}
	if scored == 0 {
		return 0
	}
	modal := 0
	for _, n := range counts {
		if n > modal {
			modal = n
		}
	}
	return float64(modal) / float64(scored)
}

// FitnessScoreCardinality returns the number of distinct fitness scores among
// evaluated chromosomes. Used by the extension operators as a diversity
// estimate.
func (p *Population[A]) FitnessScoreCardinality() int {
	distinct := make(map[int64]struct{})
	for _, c := range p.Chromosomes {
		if c.HasFitnessScore {
			distinct[c.FitnessScore] = struct{}{}
		}
	}
	return len(distinct)
}

// GenesHashCardinality returns the number of distinct genes hashes. Only
// meaningful when the owning genotype has hashing enabled.
func (p *Population[A]) GenesHashCardinality() int {
	distinct := make(map[uint64]struct{})
	for _, c := range p.Chromosomes {
		if c.HasGenesHash {
			distinct[c.GenesHash] = struct{}{}
		}
	}
	return len(distinct)
}

// Clear drops all chromosomes, handing each carrier to release.
func (p *Population[A]) Clear(release func(*chromosome.Chromosome[A])) {
	for i, c := range p.Chromosomes {
		release(c)
		p.Chromosomes[i] = nil
	}
	p.Chromosomes = p.Chromosomes[:0]
}
