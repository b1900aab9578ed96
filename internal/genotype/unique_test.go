package genotype

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomhoffer/evolvium/internal/population"
)

// assertMultisetEqual checks that genes is a permutation of want.
func assertMultisetEqual[A comparable](t *testing.T, want, genes []A) {
	t.Helper()
	require.Equal(t, len(want), len(genes))
	counts := make(map[A]int, len(want))
	for _, v := range want {
		counts[v]++
	}
	for _, v := range genes {
		counts[v]--
	}
	for v, n := range counts {
		assert.Zero(t, n, "allele %v count mismatch", v)
	}
}

func TestNewUnique(t *testing.T) {
	t.Parallel()
	g, err := NewUnique(UniqueConfig[int]{AlleleList: []int{0, 1, 2, 3, 4}})
	require.NoError(t, err)
	assert.Equal(t, 5, g.GenesSize())

	_, err = NewUnique(UniqueConfig[int]{})
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestUnique_SetRandomGenes(t *testing.T) {
	t.Parallel()
	alleles := []int{0, 1, 2, 3, 4}
	g, err := NewUnique(UniqueConfig[int]{AlleleList: alleles})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(0))

	for trial := 0; trial < 20; trial++ {
		c := g.NewRandomChromosome(rng)
		assertMultisetEqual(t, alleles, c.Genes)
		g.ReleaseChromosome(c)
	}
}

func TestUnique_MutateChromosome(t *testing.T) {
	t.Parallel()
	alleles := []int{0, 1, 2, 3, 4}
	g, err := NewUnique(UniqueConfig[int]{
		AlleleList:    alleles,
		SeedGenesList: [][]int{{0, 1, 2, 3, 4}},
	})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(0))
	c := g.NewRandomChromosome(rng)

	g.MutateChromosome(c, 1, true, 0, rng)

	assertMultisetEqual(t, alleles, c.Genes)
	diff := 0
	for i, v := range c.Genes {
		if v != i {
			diff++
		}
	}
	assert.Equal(t, 2, diff, "one swap changes exactly two positions")
}

func TestUnique_MutationPreservesUniquenessUnderPressure(t *testing.T) {
	t.Parallel()
	alleles := []int{0, 1, 2, 3, 4, 5, 6, 7}
	g, err := NewUnique(UniqueConfig[int]{AlleleList: alleles})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(0))
	c := g.NewRandomChromosome(rng)

	for round := 0; round < 100; round++ {
		g.MutateChromosome(c, 3, round%2 == 0, 0, rng)
		assertMultisetEqual(t, alleles, c.Genes)
	}
}

func TestUnique_CrossoverUnsupported(t *testing.T) {
	t.Parallel()
	g, err := NewUnique(UniqueConfig[int]{AlleleList: []int{0, 1, 2}})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(0))
	father := g.NewRandomChromosome(rng)
	mother := g.NewRandomChromosome(rng)

	assert.False(t, g.SupportsGeneCrossover())
	assert.Panics(t, func() { g.CrossoverGenes(father, mother, 1, true, rng) })
	assert.Panics(t, func() { g.CrossoverPoints(father, mother, 1, true, rng) })
}

func TestUnique_Neighbors(t *testing.T) {
	t.Parallel()
	alleles := []int{0, 1, 2, 3, 4}
	g, err := NewUnique(UniqueConfig[int]{AlleleList: alleles})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(0))
	c := g.NewRandomChromosome(rng)
	pop := population.NewEmpty[int](10)

	g.FillNeighboringPopulation(c, pop, 0, rng)

	assert.Equal(t, int64(10), g.NeighboringPopulationSize().Int64())
	require.Equal(t, 10, pop.Size())
	for _, n := range pop.Chromosomes {
		assertMultisetEqual(t, alleles, n.Genes)
	}
}

func TestUnique_Permutations(t *testing.T) {
	t.Parallel()
	g, err := NewUnique(UniqueConfig[int]{AlleleList: []int{0, 1, 2, 3}})
	require.NoError(t, err)

	require.NoError(t, g.Permutable())
	assert.Equal(t, int64(24), g.ChromosomePermutationsSize().Int64())

	seen := make(map[uint64]struct{})
	count := 0
	g.ForEachPermutation(func(genes []int) bool {
		assertMultisetEqual(t, []int{0, 1, 2, 3}, genes)
		seen[hashGenes(genes)] = struct{}{}
		count++
		return true
	})
	assert.Equal(t, 24, count)
	assert.Equal(t, 24, len(seen), "permutations must not repeat")
}
