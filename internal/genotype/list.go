package genotype

import (
	"math/big"
	"math/rand"
	"sort"

	"github.com/tomhoffer/evolvium/internal/allele"
	"github.com/tomhoffer/evolvium/internal/chromosome"
	"github.com/tomhoffer/evolvium/internal/population"
)

// ListConfig configures a List genotype.
type ListConfig[A allele.List] struct {
	// GenesSize is the genome length.
	GenesSize int
	// AlleleList is the finite value set every gene draws from.
	AlleleList []A
	// SeedGenesList optionally pins initial sampling to these genomes,
	// cycled in order.
	SeedGenesList [][]A
	// GenesHashing enables 64-bit genes fingerprints.
	GenesHashing bool
}

// List is the genotype over fixed-length genomes whose genes all draw from
// one allele set. Values may repeat across positions.
type List[A allele.List] struct {
	base[A]
	alleleList []A
}

// NewList validates the configuration and builds a List genotype.
func NewList[A allele.List](cfg ListConfig[A]) (*List[A], error) {
	if cfg.GenesSize <= 0 {
		return nil, NewConfigError("list genotype requires a positive genes size", nil)
	}
	if len(cfg.AlleleList) == 0 {
		return nil, NewConfigError("list genotype requires a non-empty allele list", nil)
	}
	if err := validateSeeds(cfg.SeedGenesList, cfg.GenesSize); err != nil {
		return nil, err
	}
	return &List[A]{
		base:       newBase[A](cfg.GenesSize, cfg.SeedGenesList, cfg.GenesHashing),
		alleleList: cfg.AlleleList,
	}, nil
}

// AlleleList exposes the configured allele set.
func (g *List[A]) AlleleList() []A {
	return g.alleleList
}

// NewRandomChromosome implements Genotype.
func (g *List[A]) NewRandomChromosome(rng *rand.Rand) *chromosome.Chromosome[A] {
	c := g.ownedCarrier()
	g.SetRandomGenes(c, rng)
	return c
}

// NewChromosomeFrom implements Genotype.
func (g *List[A]) NewChromosomeFrom(src *chromosome.Chromosome[A]) *chromosome.Chromosome[A] {
	c := g.ownedCarrier()
	g.CopyGenes(src, c)
	g.ResetChromosomeState(c)
	return c
}

// SetRandomGenes fills c with uniform draws from the allele list, or the next
// seed genome.
func (g *List[A]) SetRandomGenes(c *chromosome.Chromosome[A], rng *rand.Rand) {
	if !g.fillFromSeed(c) {
		for i := range c.Genes {
			c.Genes[i] = g.alleleList[rng.Intn(len(g.alleleList))]
		}
	}
	g.ResetChromosomeState(c)
}

// MutateChromosome replaces n gene positions with uniform draws from the
// allele list.
func (g *List[A]) MutateChromosome(c *chromosome.Chromosome[A], n int, allowDuplicates bool, scaleIndex int, rng *rand.Rand) {
	if n <= 0 {
		return
	}
	for _, i := range samplePositions(rng, n, g.genesSize, allowDuplicates) {
		c.Genes[i] = g.alleleList[rng.Intn(len(g.alleleList))]
	}
	g.ResetChromosomeState(c)
}

// SupportsGeneCrossover implements EvolveGenotype.
func (g *List[A]) SupportsGeneCrossover() bool {
	return true
}

// CrossoverGenes swaps n gene positions between father and mother.
func (g *List[A]) CrossoverGenes(father, mother *chromosome.Chromosome[A], n int, allowDuplicates bool, rng *rand.Rand) {
	g.crossoverGenesAt(father, mother, samplePositions(rng, n, g.genesSize, allowDuplicates))
}

// CrossoverPoints swaps the slices between n crossover points.
func (g *List[A]) CrossoverPoints(father, mother *chromosome.Chromosome[A], n int, allowDuplicates bool, rng *rand.Rand) {
	points := samplePositions(rng, n, g.genesSize, allowDuplicates)
	sort.Ints(points)
	g.crossoverPointsAt(father, mother, points)
}

// FillNeighboringPopulation appends one neighbor per non-current allele value
// at each gene position, (|A|-1)*N in total.
func (g *List[A]) FillNeighboringPopulation(basec *chromosome.Chromosome[A], pop *population.Population[A], scaleIndex int, rng *rand.Rand) {
	for i := 0; i < g.genesSize; i++ {
		current := basec.Genes[i]
		for _, v := range g.alleleList {
			if v == current {
				continue
			}
			n := g.NewChromosomeFrom(basec)
			n.Genes[i] = v
			g.ResetChromosomeState(n)
			pop.Push(n)
		}
	}
}

// NeighboringPopulationSize implements HillClimbGenotype.
func (g *List[A]) NeighboringPopulationSize() *big.Int {
	return big.NewInt(int64(g.genesSize * (len(g.alleleList) - 1)))
}

// Permutable implements PermutateGenotype; a finite allele set is always
// enumerable.
func (g *List[A]) Permutable() error {
	return nil
}

// ChromosomePermutationsSize returns |A|^N.
func (g *List[A]) ChromosomePermutationsSize() *big.Int {
	return new(big.Int).Exp(
		big.NewInt(int64(len(g.alleleList))),
		big.NewInt(int64(g.genesSize)),
		nil,
	)
}

// ForEachPermutation enumerates the Cartesian product of the allele list over
// every position with an odometer over a single scratch genome.
func (g *List[A]) ForEachPermutation(fn func(genes []A) bool) {
	lists := make([][]A, g.genesSize)
	for i := range lists {
		lists[i] = g.alleleList
	}
	forEachProduct(lists, fn)
}

// forEachProduct walks the Cartesian product of per-position value lists,
// reusing one scratch genome. Iteration stops when fn returns false.
func forEachProduct[A comparable](lists [][]A, fn func(genes []A) bool) {
	size := len(lists)
	for _, list := range lists {
		if len(list) == 0 {
			return
		}
	}
	indices := make([]int, size)
	scratch := make([]A, size)
	for i, list := range lists {
		scratch[i] = list[0]
	}
	for {
		if !fn(scratch) {
			return
		}
		i := size - 1
		for ; i >= 0; i-- {
			indices[i]++
			if indices[i] < len(lists[i]) {
				scratch[i] = lists[i][indices[i]]
				break
			}
			indices[i] = 0
			scratch[i] = lists[i][0]
		}
		if i < 0 {
			return
		}
	}
}
