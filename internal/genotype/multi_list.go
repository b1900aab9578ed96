package genotype

import (
	"math/big"
	"math/rand"
	"sort"

	"github.com/tomhoffer/evolvium/internal/allele"
	"github.com/tomhoffer/evolvium/internal/chromosome"
	"github.com/tomhoffer/evolvium/internal/population"
)

// MultiListConfig configures a MultiList genotype.
type MultiListConfig[A allele.List] struct {
	// AlleleLists holds one allele set per gene position; the genes size
	// is its length.
	AlleleLists [][]A
	// SeedGenesList optionally pins initial sampling to these genomes,
	// cycled in order.
	SeedGenesList [][]A
	// GenesHashing enables 64-bit genes fingerprints.
	GenesHashing bool
}

// MultiList is the genotype where gene i draws from its own allele set.
// Position sampling during mutation is weighted by list size, so larger sets
// see proportionally more mutation pressure.
type MultiList[A allele.List] struct {
	base[A]
	alleleLists [][]A
	weights     []float64
}

// NewMultiList validates the configuration and builds a MultiList genotype.
func NewMultiList[A allele.List](cfg MultiListConfig[A]) (*MultiList[A], error) {
	if len(cfg.AlleleLists) == 0 {
		return nil, NewConfigError("multi-list genotype requires at least one allele list", nil)
	}
	for _, list := range cfg.AlleleLists {
		if len(list) == 0 {
			return nil, NewConfigError("multi-list genotype requires non-empty allele lists", nil)
		}
	}
	if err := validateSeeds(cfg.SeedGenesList, len(cfg.AlleleLists)); err != nil {
		return nil, err
	}
	weights := make([]float64, len(cfg.AlleleLists))
	for i, list := range cfg.AlleleLists {
		weights[i] = float64(len(list))
	}
	return &MultiList[A]{
		base:        newBase[A](len(cfg.AlleleLists), cfg.SeedGenesList, cfg.GenesHashing),
		alleleLists: cfg.AlleleLists,
		weights:     weights,
	}, nil
}

// NewRandomChromosome implements Genotype.
func (g *MultiList[A]) NewRandomChromosome(rng *rand.Rand) *chromosome.Chromosome[A] {
	c := g.ownedCarrier()
	g.SetRandomGenes(c, rng)
	return c
}

// NewChromosomeFrom implements Genotype.
func (g *MultiList[A]) NewChromosomeFrom(src *chromosome.Chromosome[A]) *chromosome.Chromosome[A] {
	c := g.ownedCarrier()
	g.CopyGenes(src, c)
	g.ResetChromosomeState(c)
	return c
}

// SetRandomGenes fills each gene with a uniform draw from its own list, or
// the next seed genome.
func (g *MultiList[A]) SetRandomGenes(c *chromosome.Chromosome[A], rng *rand.Rand) {
	if !g.fillFromSeed(c) {
		for i, list := range g.alleleLists {
			c.Genes[i] = list[rng.Intn(len(list))]
		}
	}
	g.ResetChromosomeState(c)
}

// MutateChromosome replaces n gene positions, weighted by list size, with
// uniform draws from the relevant list.
func (g *MultiList[A]) MutateChromosome(c *chromosome.Chromosome[A], n int, allowDuplicates bool, scaleIndex int, rng *rand.Rand) {
	if n <= 0 {
		return
	}
	for _, i := range sampleWeightedPositions(rng, n, g.weights, allowDuplicates) {
		list := g.alleleLists[i]
		c.Genes[i] = list[rng.Intn(len(list))]
	}
	g.ResetChromosomeState(c)
}

// SupportsGeneCrossover implements EvolveGenotype.
func (g *MultiList[A]) SupportsGeneCrossover() bool {
	return true
}

// CrossoverGenes swaps n gene positions between father and mother.
func (g *MultiList[A]) CrossoverGenes(father, mother *chromosome.Chromosome[A], n int, allowDuplicates bool, rng *rand.Rand) {
	g.crossoverGenesAt(father, mother, samplePositions(rng, n, g.genesSize, allowDuplicates))
}

// CrossoverPoints swaps the slices between n crossover points.
func (g *MultiList[A]) CrossoverPoints(father, mother *chromosome.Chromosome[A], n int, allowDuplicates bool, rng *rand.Rand) {
	points := samplePositions(rng, n, g.genesSize, allowDuplicates)
	sort.Ints(points)
	g.crossoverPointsAt(father, mother, points)
}

// FillNeighboringPopulation appends one neighbor per non-current allele value
// at each gene position.
func (g *MultiList[A]) FillNeighboringPopulation(basec *chromosome.Chromosome[A], pop *population.Population[A], scaleIndex int, rng *rand.Rand) {
	for i, list := range g.alleleLists {
		current := basec.Genes[i]
		for _, v := range list {
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
func (g *MultiList[A]) NeighboringPopulationSize() *big.Int {
	total := 0
	for _, list := range g.alleleLists {
		total += len(list) - 1
	}
	return big.NewInt(int64(total))
}

// Permutable implements PermutateGenotype.
func (g *MultiList[A]) Permutable() error {
	return nil
}

// ChromosomePermutationsSize returns the product of the allele list sizes.
func (g *MultiList[A]) ChromosomePermutationsSize() *big.Int {
	total := big.NewInt(1)
	for _, list := range g.alleleLists {
		total.Mul(total, big.NewInt(int64(len(list))))
	}
	return total
}

// ForEachPermutation enumerates the Cartesian product over the per-gene
// allele lists.
func (g *MultiList[A]) ForEachPermutation(fn func(genes []A) bool) {
	forEachProduct(g.alleleLists, fn)
}
