package genotype

import (
	"math/big"
	"math/rand"

	"github.com/tomhoffer/evolvium/internal/allele"
	"github.com/tomhoffer/evolvium/internal/chromosome"
	"github.com/tomhoffer/evolvium/internal/population"
)

// MultiUniqueConfig configures a MultiUnique genotype.
type MultiUniqueConfig[A allele.UniqueList] struct {
	// AlleleLists holds one value set per segment. Each genome is the
	// concatenation of one permutation per segment, so the genes size is
	// the sum of the list lengths.
	AlleleLists [][]A
	// SeedGenesList optionally pins initial sampling to these genomes,
	// cycled in order.
	SeedGenesList [][]A
	// GenesHashing enables 64-bit genes fingerprints.
	GenesHashing bool
}

// MultiUnique is the genotype whose genomes concatenate k independent
// permutations. Mutation swaps two positions within one segment, chosen
// weighted by segment size, preserving per-segment uniqueness.
type MultiUnique[A allele.UniqueList] struct {
	base[A]
	alleleLists [][]A
	offsets     []int // start index of each segment in the genome
	weights     []float64
}

// NewMultiUnique validates the configuration and builds a MultiUnique
// genotype.
func NewMultiUnique[A allele.UniqueList](cfg MultiUniqueConfig[A]) (*MultiUnique[A], error) {
	if len(cfg.AlleleLists) == 0 {
		return nil, NewConfigError("multi-unique genotype requires at least one allele list", nil)
	}
	genesSize := 0
	offsets := make([]int, len(cfg.AlleleLists))
	weights := make([]float64, len(cfg.AlleleLists))
	for i, list := range cfg.AlleleLists {
		if len(list) == 0 {
			return nil, NewConfigError("multi-unique genotype requires non-empty allele lists", nil)
		}
		offsets[i] = genesSize
		genesSize += len(list)
		weights[i] = float64(len(list))
	}
	if err := validateSeeds(cfg.SeedGenesList, genesSize); err != nil {
		return nil, err
	}
	return &MultiUnique[A]{
		base:        newBase[A](genesSize, cfg.SeedGenesList, cfg.GenesHashing),
		alleleLists: cfg.AlleleLists,
		offsets:     offsets,
		weights:     weights,
	}, nil
}

// segment returns the genome slice backing segment s of c.
func (g *MultiUnique[A]) segment(c *chromosome.Chromosome[A], s int) []A {
	start := g.offsets[s]
	return c.Genes[start : start+len(g.alleleLists[s])]
}

// NewRandomChromosome implements Genotype.
func (g *MultiUnique[A]) NewRandomChromosome(rng *rand.Rand) *chromosome.Chromosome[A] {
	c := g.ownedCarrier()
	g.SetRandomGenes(c, rng)
	return c
}

// NewChromosomeFrom implements Genotype.
func (g *MultiUnique[A]) NewChromosomeFrom(src *chromosome.Chromosome[A]) *chromosome.Chromosome[A] {
	c := g.ownedCarrier()
	g.CopyGenes(src, c)
	g.ResetChromosomeState(c)
	return c
}

// SetRandomGenes shuffles each segment's allele set in place, or copies the
// next seed genome.
func (g *MultiUnique[A]) SetRandomGenes(c *chromosome.Chromosome[A], rng *rand.Rand) {
	if !g.fillFromSeed(c) {
		for s, list := range g.alleleLists {
			seg := g.segment(c, s)
			copy(seg, list)
			rng.Shuffle(len(seg), func(i, j int) {
				seg[i], seg[j] = seg[j], seg[i]
			})
		}
	}
	g.ResetChromosomeState(c)
}

// MutateChromosome performs n swaps, each within a single segment chosen
// weighted by segment size, preserving per-segment uniqueness. Without
// duplicates each segment is chosen at most once, so at most one swap per
// segment is made; segments with fewer than two genes are skipped.
func (g *MultiUnique[A]) MutateChromosome(c *chromosome.Chromosome[A], n int, allowDuplicates bool, scaleIndex int, rng *rand.Rand) {
	if n <= 0 {
		return
	}
	for _, s := range sampleWeightedPositions(rng, n, g.weights, allowDuplicates) {
		seg := g.segment(c, s)
		if len(seg) < 2 {
			continue
		}
		i, j := samplePair(rng, len(seg))
		seg[i], seg[j] = seg[j], seg[i]
	}
	g.ResetChromosomeState(c)
}

// SupportsGeneCrossover implements EvolveGenotype: only clone crossover and
// rejuvenation are legal for unique variants.
func (g *MultiUnique[A]) SupportsGeneCrossover() bool {
	return false
}

// CrossoverGenes is not supported for multi-unique genotypes.
func (g *MultiUnique[A]) CrossoverGenes(father, mother *chromosome.Chromosome[A], n int, allowDuplicates bool, rng *rand.Rand) {
	panic("genotype: gene crossover is not supported for multi-unique genotypes")
}

// CrossoverPoints is not supported for multi-unique genotypes.
func (g *MultiUnique[A]) CrossoverPoints(father, mother *chromosome.Chromosome[A], n int, allowDuplicates bool, rng *rand.Rand) {
	panic("genotype: point crossover is not supported for multi-unique genotypes")
}

// FillNeighboringPopulation appends one neighbor per within-segment position
// pair: sum of C(k_s, 2) over segments.
func (g *MultiUnique[A]) FillNeighboringPopulation(basec *chromosome.Chromosome[A], pop *population.Population[A], scaleIndex int, rng *rand.Rand) {
	for s := range g.alleleLists {
		start := g.offsets[s]
		size := len(g.alleleLists[s])
		for i := 0; i < size; i++ {
			for j := i + 1; j < size; j++ {
				n := g.NewChromosomeFrom(basec)
				n.Genes[start+i], n.Genes[start+j] = n.Genes[start+j], n.Genes[start+i]
				g.ResetChromosomeState(n)
				pop.Push(n)
			}
		}
	}
}

// NeighboringPopulationSize implements HillClimbGenotype.
func (g *MultiUnique[A]) NeighboringPopulationSize() *big.Int {
	total := int64(0)
	for _, list := range g.alleleLists {
		k := int64(len(list))
		total += k * (k - 1) / 2
	}
	return big.NewInt(total)
}

// Permutable implements PermutateGenotype.
func (g *MultiUnique[A]) Permutable() error {
	return nil
}

// ChromosomePermutationsSize returns the product of the per-segment
// factorials.
func (g *MultiUnique[A]) ChromosomePermutationsSize() *big.Int {
	total := big.NewInt(1)
	for _, list := range g.alleleLists {
		total.Mul(total, factorial(len(list)))
	}
	return total
}

// ForEachPermutation enumerates the product of per-segment permutations,
// running Heap's algorithm per segment over one scratch genome.
func (g *MultiUnique[A]) ForEachPermutation(fn func(genes []A) bool) {
	scratch := make([]A, g.genesSize)
	for s, list := range g.alleleLists {
		copy(scratch[g.offsets[s]:], list)
	}
	g.permuteSegments(scratch, 0, fn)
}

func (g *MultiUnique[A]) permuteSegments(scratch []A, s int, fn func(genes []A) bool) bool {
	if s == len(g.alleleLists) {
		return fn(scratch)
	}
	seg := scratch[g.offsets[s] : g.offsets[s]+len(g.alleleLists[s])]
	return heapPermute(seg, len(seg), func() bool {
		return g.permuteSegments(scratch, s+1, fn)
	})
}
