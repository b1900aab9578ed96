package genotype

import (
	"math/big"
	"math/rand"
	"sort"

	"github.com/tomhoffer/evolvium/internal/allele"
	"github.com/tomhoffer/evolvium/internal/chromosome"
	"github.com/tomhoffer/evolvium/internal/population"
)

// MultiRangeConfig configures a MultiRange genotype.
type MultiRangeConfig[A allele.Range] struct {
	// AlleleRanges holds one inclusive value range per gene position; the
	// genes size is its length.
	AlleleRanges []allele.Interval[A]
	// MutationType selects random, relative or scaled mutation.
	MutationType MutationType
	// AlleleMutationRanges holds one symmetric delta range per gene.
	// Required when MutationType is MutationRelative.
	AlleleMutationRanges []allele.Interval[A]
	// AlleleMutationScaledRanges holds, per scale, one delta range per
	// gene, ordered from coarse to fine. Required when MutationType is
	// MutationScaled.
	AlleleMutationScaledRanges [][]allele.Interval[A]
	// SeedGenesList optionally pins initial sampling to these genomes,
	// cycled in order.
	SeedGenesList [][]A
	// GenesHashing enables 64-bit genes fingerprints.
	GenesHashing bool
	// Storage selects owned genes or a matrix backing store.
	Storage StorageKind
	// MatrixCapacity is the maximum number of live chromosomes for
	// StorageStaticMatrix.
	MatrixCapacity int
}

// MultiRange is the genotype where gene i draws from its own numeric range.
// Position sampling during mutation is weighted by range width, so wider
// ranges see proportionally more mutation pressure.
type MultiRange[A allele.Range] struct {
	base[A]
	alleleRanges   []allele.Interval[A]
	weights        []float64
	mutationType   MutationType
	mutationRanges []allele.Interval[A]
	scaledRanges   [][]allele.Interval[A]
	store          *matrixStore[A]
}

// NewMultiRange validates the configuration and builds a MultiRange genotype.
func NewMultiRange[A allele.Range](cfg MultiRangeConfig[A]) (*MultiRange[A], error) {
	if len(cfg.AlleleRanges) == 0 {
		return nil, NewConfigError("multi-range genotype requires at least one allele range", nil)
	}
	genesSize := len(cfg.AlleleRanges)
	if cfg.MutationType == MutationRelative && len(cfg.AlleleMutationRanges) != genesSize {
		return nil, NewConfigError("relative mutation requires one mutation range per gene", nil)
	}
	if cfg.MutationType == MutationScaled {
		if len(cfg.AlleleMutationScaledRanges) == 0 {
			return nil, NewConfigError("scaled mutation requires at least one scaled mutation range", nil)
		}
		for _, perGene := range cfg.AlleleMutationScaledRanges {
			if len(perGene) != genesSize {
				return nil, NewConfigError("each mutation scale requires one delta range per gene", nil)
			}
		}
	}
	if cfg.Storage == StorageStaticMatrix && cfg.MatrixCapacity <= 0 {
		return nil, NewConfigError("static matrix storage requires a positive chromosome capacity", nil)
	}
	if err := validateSeeds(cfg.SeedGenesList, genesSize); err != nil {
		return nil, err
	}
	weights := make([]float64, genesSize)
	for i, iv := range cfg.AlleleRanges {
		weights[i] = float64(iv.Width())
	}
	g := &MultiRange[A]{
		base:           newBase[A](genesSize, cfg.SeedGenesList, cfg.GenesHashing),
		alleleRanges:   cfg.AlleleRanges,
		weights:        weights,
		mutationType:   cfg.MutationType,
		mutationRanges: cfg.AlleleMutationRanges,
		scaledRanges:   cfg.AlleleMutationScaledRanges,
	}
	switch cfg.Storage {
	case StorageStaticMatrix:
		g.store = newStaticMatrixStore[A](genesSize, cfg.MatrixCapacity)
	case StorageDynamicMatrix:
		g.store = newDynamicMatrixStore[A](genesSize)
	}
	return g, nil
}

// MaxScaleIndex returns the index of the finest mutation scale, or -1 when
// mutation is not scaled.
func (g *MultiRange[A]) MaxScaleIndex() int {
	return len(g.scaledRanges) - 1
}

func (g *MultiRange[A]) carrier() *chromosome.Chromosome[A] {
	if g.store == nil {
		return g.ownedCarrier()
	}
	c, ok := g.binGet()
	if !ok {
		c = &chromosome.Chromosome[A]{Row: chromosome.NoRow}
	}
	c.Row = g.store.allocRow()
	c.Genes = g.store.rowSlice(c.Row)
	return c
}

// NewRandomChromosome implements Genotype.
func (g *MultiRange[A]) NewRandomChromosome(rng *rand.Rand) *chromosome.Chromosome[A] {
	c := g.carrier()
	g.SetRandomGenes(c, rng)
	return c
}

// NewChromosomeFrom implements Genotype.
func (g *MultiRange[A]) NewChromosomeFrom(src *chromosome.Chromosome[A]) *chromosome.Chromosome[A] {
	c := g.carrier()
	g.CopyGenes(src, c)
	g.ResetChromosomeState(c)
	return c
}

// ReleaseChromosome frees the arena row (matrix mode) and returns the carrier
// to the bin.
func (g *MultiRange[A]) ReleaseChromosome(c *chromosome.Chromosome[A]) {
	if c == nil {
		return
	}
	if g.store != nil && c.Row != chromosome.NoRow {
		g.store.freeRow(c.Row)
		c.Row = chromosome.NoRow
		c.Genes = nil
	}
	g.binPut(c)
}

// SetRandomGenes fills each gene with a uniform draw from its own range, or
// the next seed genome.
func (g *MultiRange[A]) SetRandomGenes(c *chromosome.Chromosome[A], rng *rand.Rand) {
	if !g.fillFromSeed(c) {
		for i, iv := range g.alleleRanges {
			c.Genes[i] = iv.Sample(rng)
		}
	}
	g.ResetChromosomeState(c)
}

// MutateChromosome mutates n gene positions, weighted by range width,
// according to the configured mutation type.
func (g *MultiRange[A]) MutateChromosome(c *chromosome.Chromosome[A], n int, allowDuplicates bool, scaleIndex int, rng *rand.Rand) {
	if n <= 0 {
		return
	}
	for _, i := range sampleWeightedPositions(rng, n, g.weights, allowDuplicates) {
		c.Genes[i] = g.mutateAllele(i, c.Genes[i], scaleIndex, rng)
	}
	g.ResetChromosomeState(c)
}

func (g *MultiRange[A]) mutateAllele(gene int, v A, scaleIndex int, rng *rand.Rand) A {
	iv := g.alleleRanges[gene]
	switch g.mutationType {
	case MutationRelative:
		return iv.Clamp(v + g.mutationRanges[gene].Sample(rng))
	case MutationScaled:
		delta := g.scaledRange(scaleIndex)[gene]
		if rng.Intn(2) == 0 {
			return iv.Clamp(v + delta.Lo)
		}
		return iv.Clamp(v + delta.Hi)
	default:
		return iv.Sample(rng)
	}
}

func (g *MultiRange[A]) scaledRange(scaleIndex int) []allele.Interval[A] {
	if scaleIndex < 0 {
		scaleIndex = 0
	}
	if last := len(g.scaledRanges) - 1; scaleIndex > last {
		scaleIndex = last
	}
	return g.scaledRanges[scaleIndex]
}

// SupportsGeneCrossover implements EvolveGenotype.
func (g *MultiRange[A]) SupportsGeneCrossover() bool {
	return true
}

// CrossoverGenes swaps n gene positions between father and mother.
func (g *MultiRange[A]) CrossoverGenes(father, mother *chromosome.Chromosome[A], n int, allowDuplicates bool, rng *rand.Rand) {
	g.crossoverGenesAt(father, mother, samplePositions(rng, n, g.genesSize, allowDuplicates))
}

// CrossoverPoints swaps the slices between n crossover points.
func (g *MultiRange[A]) CrossoverPoints(father, mother *chromosome.Chromosome[A], n int, allowDuplicates bool, rng *rand.Rand) {
	points := samplePositions(rng, n, g.genesSize, allowDuplicates)
	sort.Ints(points)
	g.crossoverPointsAt(father, mother, points)
}

// FillNeighboringPopulation appends up to two neighbors per gene position.
func (g *MultiRange[A]) FillNeighboringPopulation(basec *chromosome.Chromosome[A], pop *population.Population[A], scaleIndex int, rng *rand.Rand) {
	for i := 0; i < g.genesSize; i++ {
		lower, lowerOK, upper, upperOK := g.neighborAlleles(i, basec.Genes[i], scaleIndex, rng)
		if lowerOK {
			n := g.NewChromosomeFrom(basec)
			n.Genes[i] = lower
			g.ResetChromosomeState(n)
			pop.Push(n)
		}
		if upperOK {
			n := g.NewChromosomeFrom(basec)
			n.Genes[i] = upper
			g.ResetChromosomeState(n)
			pop.Push(n)
		}
	}
}

func (g *MultiRange[A]) neighborAlleles(gene int, v A, scaleIndex int, rng *rand.Rand) (lower A, lowerOK bool, upper A, upperOK bool) {
	iv := g.alleleRanges[gene]
	switch g.mutationType {
	case MutationScaled:
		delta := g.scaledRange(scaleIndex)[gene]
		lower = iv.Clamp(v + delta.Lo)
		lowerOK = lower != v
		upper = iv.Clamp(v + delta.Hi)
		upperOK = upper != v
		return
	case MutationRelative:
		delta := g.mutationRanges[gene]
		lowBound := iv.Clamp(v + delta.Lo)
		highBound := iv.Clamp(v + delta.Hi)
		lower, lowerOK = allele.NewInterval(lowBound, v).SampleBelow(v, rng)
		upper, upperOK = allele.NewInterval(v, highBound).SampleAbove(v, rng)
		return
	default:
		lower, lowerOK = iv.SampleBelow(v, rng)
		upper, upperOK = iv.SampleAbove(v, rng)
		return
	}
}

// NeighboringPopulationSize implements HillClimbGenotype: two moves per gene
// position.
func (g *MultiRange[A]) NeighboringPopulationSize() *big.Int {
	return big.NewInt(int64(2 * g.genesSize))
}

// Permutable reports whether every per-gene range can be discretized. Only
// scaled mutation carries a step.
func (g *MultiRange[A]) Permutable() error {
	if g.mutationType != MutationScaled {
		return NewConfigError("multi-range genotype is only permutable with scaled mutation", nil)
	}
	finest := g.scaledRanges[len(g.scaledRanges)-1]
	for _, delta := range finest {
		if delta.Hi <= 0 {
			return NewConfigError("permutation requires positive finest scale steps", nil)
		}
	}
	return nil
}

// permutationLists discretizes each gene's range by its finest scale step.
func (g *MultiRange[A]) permutationLists() [][]A {
	finest := g.scaledRanges[len(g.scaledRanges)-1]
	lists := make([][]A, g.genesSize)
	for i, iv := range g.alleleRanges {
		step := finest[i].Hi
		var values []A
		for v := iv.Lo; v <= iv.Hi; v += step {
			values = append(values, v)
		}
		lists[i] = values
	}
	return lists
}

// ChromosomePermutationsSize returns the product of the per-gene discretized
// value counts. Panics on a non-permutable configuration.
func (g *MultiRange[A]) ChromosomePermutationsSize() *big.Int {
	if err := g.Permutable(); err != nil {
		panic(err.Error())
	}
	total := big.NewInt(1)
	for _, values := range g.permutationLists() {
		total.Mul(total, big.NewInt(int64(len(values))))
	}
	return total
}

// ForEachPermutation enumerates the Cartesian product of the per-gene
// discretized value lists. Panics on a non-permutable configuration.
func (g *MultiRange[A]) ForEachPermutation(fn func(genes []A) bool) {
	if err := g.Permutable(); err != nil {
		panic(err.Error())
	}
	forEachProduct(g.permutationLists(), fn)
}
