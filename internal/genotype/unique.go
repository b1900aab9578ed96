package genotype

import (
	"math/big"
	"math/rand"

	"github.com/tomhoffer/evolvium/internal/allele"
	"github.com/tomhoffer/evolvium/internal/chromosome"
	"github.com/tomhoffer/evolvium/internal/population"
)

// UniqueConfig configures a Unique genotype.
type UniqueConfig[A allele.UniqueList] struct {
	// AlleleList is the value set; every genome is a permutation of it,
	// so the genes size equals its length.
	AlleleList []A
	// SeedGenesList optionally pins initial sampling to these genomes,
	// cycled in order.
	SeedGenesList [][]A
	// GenesHashing enables 64-bit genes fingerprints.
	GenesHashing bool
}

// Unique is the genotype whose genomes are permutations of one allele set.
// Mutation swaps two positions instead of replacing a value, and gene or
// point crossover is not supported, because both would break uniqueness.
type Unique[A allele.UniqueList] struct {
	base[A]
	alleleList []A
}

// NewUnique validates the configuration and builds a Unique genotype.
func NewUnique[A allele.UniqueList](cfg UniqueConfig[A]) (*Unique[A], error) {
	if len(cfg.AlleleList) == 0 {
		return nil, NewConfigError("unique genotype requires a non-empty allele list", nil)
	}
	if err := validateSeeds(cfg.SeedGenesList, len(cfg.AlleleList)); err != nil {
		return nil, err
	}
	return &Unique[A]{
		base:       newBase[A](len(cfg.AlleleList), cfg.SeedGenesList, cfg.GenesHashing),
		alleleList: cfg.AlleleList,
	}, nil
}

// NewRandomChromosome implements Genotype.
func (g *Unique[A]) NewRandomChromosome(rng *rand.Rand) *chromosome.Chromosome[A] {
	c := g.ownedCarrier()
	g.SetRandomGenes(c, rng)
	return c
}

// NewChromosomeFrom implements Genotype.
func (g *Unique[A]) NewChromosomeFrom(src *chromosome.Chromosome[A]) *chromosome.Chromosome[A] {
	c := g.ownedCarrier()
	g.CopyGenes(src, c)
	g.ResetChromosomeState(c)
	return c
}

// SetRandomGenes shuffles the allele set into c, or copies the next seed
// genome.
func (g *Unique[A]) SetRandomGenes(c *chromosome.Chromosome[A], rng *rand.Rand) {
	if !g.fillFromSeed(c) {
		copy(c.Genes, g.alleleList)
		rng.Shuffle(len(c.Genes), func(i, j int) {
			c.Genes[i], c.Genes[j] = c.Genes[j], c.Genes[i]
		})
	}
	g.ResetChromosomeState(c)
}

// MutateChromosome performs n swaps of two positions each. Without duplicates
// the swaps use min(2n, genes size) distinct positions, so at most half the
// genes size in swaps are made. A swap never replaces a value, so the genome
// stays a permutation of the allele set.
func (g *Unique[A]) MutateChromosome(c *chromosome.Chromosome[A], n int, allowDuplicates bool, scaleIndex int, rng *rand.Rand) {
	if n <= 0 || g.genesSize < 2 {
		return
	}
	if allowDuplicates {
		for s := 0; s < n; s++ {
			i, j := samplePair(rng, g.genesSize)
			c.Genes[i], c.Genes[j] = c.Genes[j], c.Genes[i]
		}
	} else {
		positions := samplePositions(rng, min(2*n, g.genesSize), g.genesSize, false)
		for s := 0; s+1 < len(positions); s += 2 {
			i, j := positions[s], positions[s+1]
			c.Genes[i], c.Genes[j] = c.Genes[j], c.Genes[i]
		}
	}
	g.ResetChromosomeState(c)
}

// samplePair draws two distinct indices in [0, size).
func samplePair(rng *rand.Rand, size int) (int, int) {
	i := rng.Intn(size)
	j := rng.Intn(size - 1)
	if j >= i {
		j++
	}
	return i, j
}

// SupportsGeneCrossover implements EvolveGenotype: exchanging individual
// genes between two permutations breaks uniqueness, so only clone crossover
// and rejuvenation are legal for this variant.
func (g *Unique[A]) SupportsGeneCrossover() bool {
	return false
}

// CrossoverGenes is not supported for unique genotypes.
func (g *Unique[A]) CrossoverGenes(father, mother *chromosome.Chromosome[A], n int, allowDuplicates bool, rng *rand.Rand) {
	panic("genotype: gene crossover is not supported for unique genotypes")
}

// CrossoverPoints is not supported for unique genotypes.
func (g *Unique[A]) CrossoverPoints(father, mother *chromosome.Chromosome[A], n int, allowDuplicates bool, rng *rand.Rand) {
	panic("genotype: point crossover is not supported for unique genotypes")
}

// FillNeighboringPopulation appends one neighbor per position pair, each with
// that pair swapped: C(N,2) neighbors.
func (g *Unique[A]) FillNeighboringPopulation(basec *chromosome.Chromosome[A], pop *population.Population[A], scaleIndex int, rng *rand.Rand) {
	for i := 0; i < g.genesSize; i++ {
		for j := i + 1; j < g.genesSize; j++ {
			n := g.NewChromosomeFrom(basec)
			n.Genes[i], n.Genes[j] = n.Genes[j], n.Genes[i]
			g.ResetChromosomeState(n)
			pop.Push(n)
		}
	}
}

// NeighboringPopulationSize implements HillClimbGenotype: C(N,2).
func (g *Unique[A]) NeighboringPopulationSize() *big.Int {
	n := int64(g.genesSize)
	return big.NewInt(n * (n - 1) / 2)
}

// Permutable implements PermutateGenotype; a permutation space is always
// enumerable.
func (g *Unique[A]) Permutable() error {
	return nil
}

// ChromosomePermutationsSize returns N!.
func (g *Unique[A]) ChromosomePermutationsSize() *big.Int {
	return factorial(g.genesSize)
}

// ForEachPermutation enumerates every permutation of the allele set with
// Heap's algorithm over a single scratch genome.
func (g *Unique[A]) ForEachPermutation(fn func(genes []A) bool) {
	scratch := make([]A, g.genesSize)
	copy(scratch, g.alleleList)
	heapPermute(scratch, len(scratch), func() bool {
		return fn(scratch)
	})
}

// heapPermute runs Heap's algorithm on items[:k], invoking fn at every
// arrangement. Returns false when fn stopped the iteration.
func heapPermute[A any](items []A, k int, fn func() bool) bool {
	if k <= 1 {
		return fn()
	}
	for i := 0; i < k-1; i++ {
		if !heapPermute(items, k-1, fn) {
			return false
		}
		if k%2 == 0 {
			items[i], items[k-1] = items[k-1], items[i]
		} else {
			items[0], items[k-1] = items[k-1], items[0]
		}
	}
	return heapPermute(items, k-1, fn)
}

// factorial returns n! as a big integer.
func factorial(n int) *big.Int {
	if n < 2 {
		return big.NewInt(1)
	}
	return new(big.Int).MulRange(1, int64(n))
}
