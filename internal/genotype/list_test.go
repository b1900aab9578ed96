package genotype

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomhoffer/evolvium/internal/population"
)

func TestNewList(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name        string
		cfg         ListConfig[rune]
		expectError bool
	}{
		{
			name: "Valid configuration",
			cfg:  ListConfig[rune]{GenesSize: 5, AlleleList: []rune("abc")},
		},
		{
			name:        "Empty allele list",
			cfg:         ListConfig[rune]{GenesSize: 5},
			expectError: true,
		},
		{
			name:        "Zero genes size",
			cfg:         ListConfig[rune]{AlleleList: []rune("abc")},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			g, err := NewList(tc.cfg)
			if tc.expectError {
				assert.Error(t, err)
				assert.Nil(t, g)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, g)
			}
		})
	}
}

func TestList_MutationDrawsFromAlleleList(t *testing.T) {
	t.Parallel()
	alleles := []int{10, 20, 30}
	g, err := NewList(ListConfig[int]{GenesSize: 6, AlleleList: alleles})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(0))
	c := g.NewRandomChromosome(rng)

	for round := 0; round < 50; round++ {
		g.MutateChromosome(c, 2, false, 0, rng)
		for _, v := range c.Genes {
			assert.Contains(t, alleles, v)
		}
		assert.Equal(t, 6, len(c.Genes))
	}
}

func TestList_Neighbors(t *testing.T) {
	t.Parallel()
	g, err := NewList(ListConfig[int]{GenesSize: 3, AlleleList: []int{0, 1, 2, 3}})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(0))
	c := g.NewRandomChromosome(rng)
	pop := population.NewEmpty[int](9)

	g.FillNeighboringPopulation(c, pop, 0, rng)

	// (|A|-1) * N = 3 * 3
	assert.Equal(t, int64(9), g.NeighboringPopulationSize().Int64())
	assert.Equal(t, 9, pop.Size())
}

func TestList_Permutations(t *testing.T) {
	t.Parallel()
	g, err := NewList(ListConfig[int]{GenesSize: 2, AlleleList: []int{0, 1, 2}})
	require.NoError(t, err)

	require.NoError(t, g.Permutable())
	assert.Equal(t, int64(9), g.ChromosomePermutationsSize().Int64())

	seen := make(map[uint64]struct{})
	count := 0
	g.ForEachPermutation(func(genes []int) bool {
		require.Equal(t, 2, len(genes))
		seen[hashGenes(genes)] = struct{}{}
		count++
		return true
	})
	assert.Equal(t, 9, count, "List with 3 alleles over 2 genes enumerates one genome per product")
	assert.Equal(t, 9, len(seen))
}

func TestList_PermutationEarlyStop(t *testing.T) {
	t.Parallel()
	g, err := NewList(ListConfig[int]{GenesSize: 2, AlleleList: []int{0, 1, 2}})
	require.NoError(t, err)

	count := 0
	g.ForEachPermutation(func(genes []int) bool {
		count++
		return count < 4
	})
	assert.Equal(t, 4, count)
}
