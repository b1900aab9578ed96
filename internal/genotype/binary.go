package genotype

import (
	"math/big"
	"math/rand"
	"sort"

	"github.com/tomhoffer/evolvium/internal/chromosome"
	"github.com/tomhoffer/evolvium/internal/population"
)

// BinaryConfig configures a Binary genotype.
type BinaryConfig struct {
	// GenesSize is the bit-vector length.
	GenesSize int
	// SeedGenesList optionally pins initial sampling to these genomes,
	// cycled in order.
	SeedGenesList [][]bool
	// GenesHashing enables 64-bit genes fingerprints.
	GenesHashing bool
}

// Binary is the genotype over bit-vectors of a fixed length. Mutation is a
// toggle, so it needs no allele bookkeeping beyond the genes size.
type Binary struct {
	base[bool]
}

// NewBinary validates the configuration and builds a Binary genotype.
func NewBinary(cfg BinaryConfig) (*Binary, error) {
	if cfg.GenesSize <= 0 {
		return nil, NewConfigError("binary genotype requires a positive genes size", nil)
	}
	if err := validateSeeds(cfg.SeedGenesList, cfg.GenesSize); err != nil {
		return nil, err
	}
	return &Binary{base: newBase[bool](cfg.GenesSize, cfg.SeedGenesList, cfg.GenesHashing)}, nil
}

// NewRandomChromosome implements Genotype.
func (g *Binary) NewRandomChromosome(rng *rand.Rand) *chromosome.Chromosome[bool] {
	c := g.ownedCarrier()
	g.SetRandomGenes(c, rng)
	return c
}

// NewChromosomeFrom implements Genotype.
func (g *Binary) NewChromosomeFrom(src *chromosome.Chromosome[bool]) *chromosome.Chromosome[bool] {
	c := g.ownedCarrier()
	g.CopyGenes(src, c)
	g.ResetChromosomeState(c)
	return c
}

// SetRandomGenes fills c with fair coin flips, or the next seed genome.
func (g *Binary) SetRandomGenes(c *chromosome.Chromosome[bool], rng *rand.Rand) {
	if !g.fillFromSeed(c) {
		for i := range c.Genes {
			c.Genes[i] = rng.Intn(2) == 1
		}
	}
	g.ResetChromosomeState(c)
}

// MutateChromosome toggles n gene positions.
func (g *Binary) MutateChromosome(c *chromosome.Chromosome[bool], n int, allowDuplicates bool, scaleIndex int, rng *rand.Rand) {
	if n <= 0 {
		return
	}
	for _, i := range samplePositions(rng, n, g.genesSize, allowDuplicates) {
		c.Genes[i] = !c.Genes[i]
	}
	g.ResetChromosomeState(c)
}

// SupportsGeneCrossover implements EvolveGenotype.
func (g *Binary) SupportsGeneCrossover() bool {
	return true
}

// CrossoverGenes swaps n gene positions between father and mother.
func (g *Binary) CrossoverGenes(father, mother *chromosome.Chromosome[bool], n int, allowDuplicates bool, rng *rand.Rand) {
	g.crossoverGenesAt(father, mother, samplePositions(rng, n, g.genesSize, allowDuplicates))
}

// CrossoverPoints swaps the slices between n crossover points.
func (g *Binary) CrossoverPoints(father, mother *chromosome.Chromosome[bool], n int, allowDuplicates bool, rng *rand.Rand) {
	points := samplePositions(rng, n, g.genesSize, allowDuplicates)
	sort.Ints(points)
	g.crossoverPointsAt(father, mother, points)
}

// FillNeighboringPopulation appends one neighbor per gene position, each with
// that position toggled.
func (g *Binary) FillNeighboringPopulation(basec *chromosome.Chromosome[bool], pop *population.Population[bool], scaleIndex int, rng *rand.Rand) {
	for i := 0; i < g.genesSize; i++ {
		n := g.NewChromosomeFrom(basec)
		n.Genes[i] = !n.Genes[i]
		g.ResetChromosomeState(n)
		pop.Push(n)
	}
}

// NeighboringPopulationSize implements HillClimbGenotype.
func (g *Binary) NeighboringPopulationSize() *big.Int {
	return big.NewInt(int64(g.genesSize))
}

// Permutable implements PermutateGenotype; a bit-vector space is always
// enumerable.
func (g *Binary) Permutable() error {
	return nil
}

// ChromosomePermutationsSize returns 2^N.
func (g *Binary) ChromosomePermutationsSize() *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(g.genesSize))
}

// ForEachPermutation enumerates the Cartesian product {false,true}^N with a
// binary odometer over a single scratch genome.
func (g *Binary) ForEachPermutation(fn func(genes []bool) bool) {
	scratch := make([]bool, g.genesSize)
	for {
		if !fn(scratch) {
			return
		}
		i := g.genesSize - 1
		for ; i >= 0; i-- {
			if !scratch[i] {
				scratch[i] = true
				break
			}
			scratch[i] = false
		}
		if i < 0 {
			return
		}
	}
}

// validateSeeds checks that every seed genome matches the configured genes
// size.
func validateSeeds[A comparable](seeds [][]A, genesSize int) error {
	for _, seed := range seeds {
		if len(seed) != genesSize {
			return NewConfigError("seed genes list entries must match the genes size", nil)
		}
	}
	return nil
}
