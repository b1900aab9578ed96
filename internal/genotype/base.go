package genotype

import (
	"github.com/tomhoffer/evolvium/internal/chromosome"
)

// base carries the state shared by every genotype variant: the configured
// genes size, the seed genome list with its cycling cursor, the hashing flag,
// the best-genes capture buffer and the carrier recycling bin.
type base[A comparable] struct {
	genesSize  int
	seedGenes  [][]A
	seedCursor int
	hashing    bool
	bestGenes  []A
	bin        []*chromosome.Chromosome[A]
}

func newBase[A comparable](genesSize int, seedGenes [][]A, hashing bool) base[A] {
	return base[A]{
		genesSize: genesSize,
		seedGenes: seedGenes,
		hashing:   hashing,
		bestGenes: make([]A, genesSize),
	}
}

// GenesSize returns the number of genes per chromosome.
func (b *base[A]) GenesSize() int {
	return b.genesSize
}

// GenesHashing reports whether genes fingerprints are maintained.
func (b *base[A]) GenesHashing() bool {
	return b.hashing
}

// MaxScaleIndex returns -1; scaled range genotypes shadow this.
func (b *base[A]) MaxScaleIndex() int {
	return -1
}

// SeedGenesList exposes the configured seed genomes.
func (b *base[A]) SeedGenesList() [][]A {
	return b.seedGenes
}

// binGet pops a recycled carrier, LIFO.
func (b *base[A]) binGet() (*chromosome.Chromosome[A], bool) {
	if len(b.bin) == 0 {
		return nil, false
	}
	c := b.bin[len(b.bin)-1]
	b.bin = b.bin[:len(b.bin)-1]
	return c, true
}

// binPut returns a carrier to the bin.
func (b *base[A]) binPut(c *chromosome.Chromosome[A]) {
	b.bin = append(b.bin, c)
}

// ownedCarrier produces a carrier with an owned gene slice, recycling from
// the bin when possible. Matrix-backed variants use their own carrier path.
func (b *base[A]) ownedCarrier() *chromosome.Chromosome[A] {
	if c, ok := b.binGet(); ok {
		return c
	}
	return chromosome.New(make([]A, b.genesSize))
}

// ReleaseChromosome returns the carrier to the bin. Matrix-backed variants
// shadow this to free the backing-store row first.
func (b *base[A]) ReleaseChromosome(c *chromosome.Chromosome[A]) {
	if c == nil {
		return
	}
	b.binPut(c)
}

// CopyGenes copies src's genes into dst. Both carriers hold slices of the
// configured genes size regardless of physical form, so a plain copy serves
// owned and row-indexed chromosomes alike.
func (b *base[A]) CopyGenes(src, dst *chromosome.Chromosome[A]) {
	copy(dst.Genes, src.Genes)
}

// ResetChromosomeState invalidates fitness, zeroes age and recomputes the
// genes hash when hashing is enabled. Called after every gene change.
func (b *base[A]) ResetChromosomeState(c *chromosome.Chromosome[A]) {
	c.Reset()
	if b.hashing {
		c.GenesHash = hashGenes(c.Genes)
		c.HasGenesHash = true
	}
}

// SaveBestGenes copies c's current genes into the best-genes buffer.
func (b *base[A]) SaveBestGenes(c *chromosome.Chromosome[A]) {
	copy(b.bestGenes, c.Genes)
}

// LoadBestGenes writes the best-genes buffer back into c and resets its
// state.
func (b *base[A]) LoadBestGenes(c *chromosome.Chromosome[A]) {
	copy(c.Genes, b.bestGenes)
	b.ResetChromosomeState(c)
}

// BestGenes exposes the best-genes buffer.
func (b *base[A]) BestGenes() []A {
	return b.bestGenes
}

// fillFromSeed copies the next seed genome into c, cycling through the seed
// list in order for reproducibility. Returns false when no seeds are
// configured.
func (b *base[A]) fillFromSeed(c *chromosome.Chromosome[A]) bool {
	if len(b.seedGenes) == 0 {
		return false
	}
	seed := b.seedGenes[b.seedCursor%len(b.seedGenes)]
	b.seedCursor++
	copy(c.Genes, seed)
	return true
}

// crossoverGenesAt swaps the gene at each sampled position between father and
// mother, then resets both carriers.
func (b *base[A]) crossoverGenesAt(father, mother *chromosome.Chromosome[A], positions []int) {
	for _, i := range positions {
		father.Genes[i], mother.Genes[i] = mother.Genes[i], father.Genes[i]
	}
	b.ResetChromosomeState(father)
	b.ResetChromosomeState(mother)
}

// crossoverPointsAt swaps the suffix slice between consecutive point pairs
// (and from a lone point to the end) between father and mother, which is
// equivalent to n-point crossover.
func (b *base[A]) crossoverPointsAt(father, mother *chromosome.Chromosome[A], points []int) {
	for p := 0; p < len(points); p += 2 {
		start := points[p]
		end := b.genesSize
		if p+1 < len(points) {
			end = points[p+1]
		}
		for i := start; i < end; i++ {
			father.Genes[i], mother.Genes[i] = mother.Genes[i], father.Genes[i]
		}
	}
	b.ResetChromosomeState(father)
	b.ResetChromosomeState(mother)
}
