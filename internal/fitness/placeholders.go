package fitness

import (
	"math/bits"

	"github.com/tomhoffer/evolvium/internal/allele"
	"github.com/tomhoffer/evolvium/internal/chromosome"
	"github.com/tomhoffer/evolvium/internal/genotype"
)

// CountTrue scores a binary genome by its number of true genes. Useful as a
// smoke-test objective and in examples.
type CountTrue struct{}

// CalculateForChromosome implements Fitness.
func (CountTrue) CalculateForChromosome(c *chromosome.Chromosome[bool], g genotype.Genotype[bool]) (Value, bool) {
	count := Value(0)
	for _, gene := range c.Genes {
		if gene {
			count++
		}
	}
	return count, true
}

// CountOnes scores a genome of packed unsigned words by its total number of
// set bits. The packed counterpart of CountTrue, for genomes that encode a
// bit-vector as machine words instead of booleans.
type CountOnes[A ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64] struct{}

// CalculateForChromosome implements Fitness.
func (CountOnes[A]) CalculateForChromosome(c *chromosome.Chromosome[A], g genotype.Genotype[A]) (Value, bool) {
	count := Value(0)
	for _, word := range c.Genes {
		count += Value(bits.OnesCount64(uint64(word)))
	}
	return count, true
}

// SumGenes scores a numeric genome by the sum of its genes, scaled by a
// precision factor so floating-point objectives survive the integer score
// type. A zero precision counts as 1.
type SumGenes[A allele.Range] struct {
	// Precision divides the gene sum before truncation; use e.g. 1e-3 to
	// keep three fractional digits.
	Precision float64
}

// CalculateForChromosome implements Fitness.
func (f SumGenes[A]) CalculateForChromosome(c *chromosome.Chromosome[A], g genotype.Genotype[A]) (Value, bool) {
	precision := f.Precision
	if precision == 0 {
		precision = 1
	}
	sum := 0.0
	for _, gene := range c.Genes {
		sum += float64(gene)
	}
	return Value(sum / precision), true
}

// Zero scores every genome as zero. Useful for exercising the machinery in
// tests without an objective.
type Zero[A comparable] struct{}

// CalculateForChromosome implements Fitness.
func (Zero[A]) CalculateForChromosome(c *chromosome.Chromosome[A], g genotype.Genotype[A]) (Value, bool) {
	return 0, true
}
