package genotype

import (
	"math/big"
	"math/rand"
	"sort"

	"github.com/tomhoffer/evolvium/internal/allele"
	"github.com/tomhoffer/evolvium/internal/chromosome"
	"github.com/tomhoffer/evolvium/internal/population"
)

// RangeConfig configures a Range genotype.
type RangeConfig[A allele.Range] struct {
	// GenesSize is the genome length.
	GenesSize int
	// AlleleRange is the inclusive value range every gene draws from.
	AlleleRange allele.Interval[A]
	// MutationType selects random, relative or scaled mutation.
	MutationType MutationType
	// AlleleMutationRange is the symmetric delta range for relative
	// mutation. Required when MutationType is MutationRelative.
	AlleleMutationRange *allele.Interval[A]
	// AlleleMutationScaledRanges is the ordered list of progressively
	// tighter delta ranges for scaled mutation, indexed by the strategy's
	// scale index. Required when MutationType is MutationScaled.
	AlleleMutationScaledRanges []allele.Interval[A]
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

// Range is the genotype over fixed-length genomes of ordered numeric alleles
// drawn from one inclusive range. It optionally backs its chromosomes by a
// dense row-major arena so the generational inner loop allocates nothing.
type Range[A allele.Range] struct {
	base[A]
	alleleRange   allele.Interval[A]
	mutationType  MutationType
	mutationRange allele.Interval[A]
	scaledRanges  []allele.Interval[A]
	store         *matrixStore[A]
}

// NewRange validates the configuration and builds a Range genotype.
func NewRange[A allele.Range](cfg RangeConfig[A]) (*Range[A], error) {
	if cfg.GenesSize <= 0 {
		return nil, NewConfigError("range genotype requires a positive genes size", nil)
	}
	if cfg.AlleleRange.Hi < cfg.AlleleRange.Lo {
		return nil, NewConfigError("range genotype requires a non-empty allele range", nil)
	}
	if cfg.MutationType == MutationRelative && cfg.AlleleMutationRange == nil {
		return nil, NewConfigError("relative mutation requires an allele mutation range", nil)
	}
	if cfg.MutationType == MutationScaled && len(cfg.AlleleMutationScaledRanges) == 0 {
		return nil, NewConfigError("scaled mutation requires at least one scaled mutation range", nil)
	}
	if cfg.Storage == StorageStaticMatrix && cfg.MatrixCapacity <= 0 {
		return nil, NewConfigError("static matrix storage requires a positive chromosome capacity", nil)
	}
	if err := validateSeeds(cfg.SeedGenesList, cfg.GenesSize); err != nil {
		return nil, err
	}
	g := &Range[A]{
		base:         newBase[A](cfg.GenesSize, cfg.SeedGenesList, cfg.GenesHashing),
		alleleRange:  cfg.AlleleRange,
		mutationType: cfg.MutationType,
		scaledRanges: cfg.AlleleMutationScaledRanges,
	}
	if cfg.AlleleMutationRange != nil {
		g.mutationRange = *cfg.AlleleMutationRange
	}
	switch cfg.Storage {
	case StorageStaticMatrix:
		g.store = newStaticMatrixStore[A](cfg.GenesSize, cfg.MatrixCapacity)
	case StorageDynamicMatrix:
		g.store = newDynamicMatrixStore[A](cfg.GenesSize)
	}
	return g, nil
}

// AlleleRange exposes the configured value range.
func (g *Range[A]) AlleleRange() allele.Interval[A] {
	return g.alleleRange
}

// MaxScaleIndex returns the index of the finest scaled mutation range, or -1
// when mutation is not scaled.
func (g *Range[A]) MaxScaleIndex() int {
	return len(g.scaledRanges) - 1
}

// LiveChromosomes returns how many matrix rows are currently allocated.
// Always zero for owned storage.
func (g *Range[A]) LiveChromosomes() int {
	if g.store == nil {
		return 0
	}
	return g.store.liveRows()
}

// carrier produces a fresh or recycled carrier. In matrix mode the carrier's
// genes alias its allocated arena row.
func (g *Range[A]) carrier() *chromosome.Chromosome[A] {
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
func (g *Range[A]) NewRandomChromosome(rng *rand.Rand) *chromosome.Chromosome[A] {
	c := g.carrier()
	g.SetRandomGenes(c, rng)
	return c
}

// NewChromosomeFrom implements Genotype.
func (g *Range[A]) NewChromosomeFrom(src *chromosome.Chromosome[A]) *chromosome.Chromosome[A] {
	c := g.carrier()
	g.CopyGenes(src, c)
	g.ResetChromosomeState(c)
	return c
}

// ReleaseChromosome frees the arena row (matrix mode) and returns the carrier
// to the bin. The row's memory is reused on the next allocation without
// clearing.
func (g *Range[A]) ReleaseChromosome(c *chromosome.Chromosome[A]) {
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

// SetRandomGenes fills c with uniform draws from the allele range, or the
// next seed genome.
func (g *Range[A]) SetRandomGenes(c *chromosome.Chromosome[A], rng *rand.Rand) {
	if !g.fillFromSeed(c) {
		for i := range c.Genes {
			c.Genes[i] = g.alleleRange.Sample(rng)
		}
	}
	g.ResetChromosomeState(c)
}

// MutateChromosome mutates n gene positions according to the configured
// mutation type: uniform redraw, clamped relative delta, or clamped scaled
// endpoint step chosen by fair coin.
func (g *Range[A]) MutateChromosome(c *chromosome.Chromosome[A], n int, allowDuplicates bool, scaleIndex int, rng *rand.Rand) {
	if n <= 0 {
		return
	}
	for _, i := range samplePositions(rng, n, g.genesSize, allowDuplicates) {
		c.Genes[i] = g.mutateAllele(c.Genes[i], scaleIndex, rng)
	}
	g.ResetChromosomeState(c)
}

func (g *Range[A]) mutateAllele(v A, scaleIndex int, rng *rand.Rand) A {
	switch g.mutationType {
	case MutationRelative:
		return g.alleleRange.Clamp(v + g.mutationRange.Sample(rng))
	case MutationScaled:
		delta := g.scaledRange(scaleIndex)
		if rng.Intn(2) == 0 {
			return g.alleleRange.Clamp(v + delta.Lo)
		}
		return g.alleleRange.Clamp(v + delta.Hi)
	default:
		return g.alleleRange.Sample(rng)
	}
}

// scaledRange returns the delta range for the given scale index, pinned to
// the configured scale list.
func (g *Range[A]) scaledRange(scaleIndex int) allele.Interval[A] {
	if scaleIndex < 0 {
		scaleIndex = 0
	}
	if max := len(g.scaledRanges) - 1; scaleIndex > max {
		scaleIndex = max
	}
	return g.scaledRanges[scaleIndex]
}

// SupportsGeneCrossover implements EvolveGenotype.
func (g *Range[A]) SupportsGeneCrossover() bool {
	return true
}

// CrossoverGenes swaps n gene positions between father and mother.
func (g *Range[A]) CrossoverGenes(father, mother *chromosome.Chromosome[A], n int, allowDuplicates bool, rng *rand.Rand) {
	g.crossoverGenesAt(father, mother, samplePositions(rng, n, g.genesSize, allowDuplicates))
}

// CrossoverPoints swaps the slices between n crossover points.
func (g *Range[A]) CrossoverPoints(father, mother *chromosome.Chromosome[A], n int, allowDuplicates bool, rng *rand.Rand) {
	points := samplePositions(rng, n, g.genesSize, allowDuplicates)
	sort.Ints(points)
	g.crossoverPointsAt(father, mother, points)
}

// FillNeighboringPopulation appends up to two neighbors per gene position,
// the minimum move in each direction under the configured mutation type.
// Moves that clamp back onto the base value are omitted.
func (g *Range[A]) FillNeighboringPopulation(basec *chromosome.Chromosome[A], pop *population.Population[A], scaleIndex int, rng *rand.Rand) {
	for i := 0; i < g.genesSize; i++ {
		lower, lowerOK, upper, upperOK := g.neighborAlleles(basec.Genes[i], scaleIndex, rng)
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

// neighborAlleles produces the one-step moves below and above v. For scaled
// mutation these are the clamped endpoint steps of the current scale; for
// relative and random mutation they are strict draws below and above v from
// the delta-bounded (or full) range.
func (g *Range[A]) neighborAlleles(v A, scaleIndex int, rng *rand.Rand) (lower A, lowerOK bool, upper A, upperOK bool) {
	switch g.mutationType {
	case MutationScaled:
		delta := g.scaledRange(scaleIndex)
		lower = g.alleleRange.Clamp(v + delta.Lo)
		lowerOK = lower != v
		upper = g.alleleRange.Clamp(v + delta.Hi)
		upperOK = upper != v
		return
	case MutationRelative:
		lowBound := g.alleleRange.Clamp(v + g.mutationRange.Lo)
		highBound := g.alleleRange.Clamp(v + g.mutationRange.Hi)
		lower, lowerOK = allele.NewInterval(lowBound, v).SampleBelow(v, rng)
		upper, upperOK = allele.NewInterval(v, highBound).SampleAbove(v, rng)
		return
	default:
		lower, lowerOK = g.alleleRange.SampleBelow(v, rng)
		upper, upperOK = g.alleleRange.SampleAbove(v, rng)
		return
	}
}

// NeighboringPopulationSize implements HillClimbGenotype: two moves per gene
// position.
func (g *Range[A]) NeighboringPopulationSize() *big.Int {
	return big.NewInt(int64(2 * g.genesSize))
}

// Permutable reports whether the range can be enumerated. Only scaled
// mutation carries a discretization step; random and relative configurations
// cannot be permuted.
func (g *Range[A]) Permutable() error {
	if g.mutationType != MutationScaled {
		return NewConfigError("range genotype is only permutable with scaled mutation", nil)
	}
	if step := g.scaledRanges[len(g.scaledRanges)-1].Hi; step <= 0 {
		return NewConfigError("permutation requires a positive finest scale step", nil)
	}
	return nil
}

// permutationValues discretizes the allele range by the finest scale's upper
// endpoint step.
func (g *Range[A]) permutationValues() []A {
	step := g.scaledRanges[len(g.scaledRanges)-1].Hi
	var values []A
	for v := g.alleleRange.Lo; v <= g.alleleRange.Hi; v += step {
		values = append(values, v)
	}
	return values
}

// ChromosomePermutationsSize returns the discretized value count raised to
// the genes size. Panics on a non-permutable configuration.
func (g *Range[A]) ChromosomePermutationsSize() *big.Int {
	if err := g.Permutable(); err != nil {
		panic(err.Error())
	}
	return new(big.Int).Exp(
		big.NewInt(int64(len(g.permutationValues()))),
		big.NewInt(int64(g.genesSize)),
		nil,
	)
}

// ForEachPermutation enumerates the Cartesian product of the discretized
// value list over every position. Panics on a non-permutable configuration.
func (g *Range[A]) ForEachPermutation(fn func(genes []A) bool) {
	if err := g.Permutable(); err != nil {
		panic(err.Error())
	}
	values := g.permutationValues()
	lists := make([][]A, g.genesSize)
	for i := range lists {
		lists[i] = values
	}
	forEachProduct(lists, fn)
}
