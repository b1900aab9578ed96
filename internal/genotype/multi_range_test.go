package genotype

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomhoffer/evolvium/internal/allele"
	"github.com/tomhoffer/evolvium/internal/population"
)

func TestNewMultiRange(t *testing.T) {
	t.Parallel()
	ranges := []allele.Interval[float64]{
		allele.NewInterval(0.0, 1.0),
		allele.NewInterval(-5.0, 5.0),
	}

	t.Run("valid random mutation", func(t *testing.T) {
		t.Parallel()
		g, err := NewMultiRange(MultiRangeConfig[float64]{AlleleRanges: ranges})
		require.NoError(t, err)
		assert.Equal(t, 2, g.GenesSize())
	})

	t.Run("relative mutation requires per-gene delta ranges", func(t *testing.T) {
		t.Parallel()
		_, err := NewMultiRange(MultiRangeConfig[float64]{
			AlleleRanges: ranges,
			MutationType: MutationRelative,
		})
		var ce *ConfigError
		assert.ErrorAs(t, err, &ce)
	})

	t.Run("scaled mutation requires per-gene delta ranges per scale", func(t *testing.T) {
		t.Parallel()
		_, err := NewMultiRange(MultiRangeConfig[float64]{
			AlleleRanges: ranges,
			MutationType: MutationScaled,
			AlleleMutationScaledRanges: [][]allele.Interval[float64]{
				{allele.NewInterval(-0.5, 0.5)},
			},
		})
		var ce *ConfigError
		assert.ErrorAs(t, err, &ce)
	})
}

func TestMultiRange_GenesStayInTheirRanges(t *testing.T) {
	t.Parallel()
	ranges := []allele.Interval[float64]{
		allele.NewInterval(0.0, 1.0),
		allele.NewInterval(-5.0, 5.0),
		allele.NewInterval(100.0, 200.0),
	}
	g, err := NewMultiRange(MultiRangeConfig[float64]{AlleleRanges: ranges})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(0))
	c := g.NewRandomChromosome(rng)

	for round := 0; round < 100; round++ {
		g.MutateChromosome(c, 2, round%2 == 0, 0, rng)
		for i, v := range c.Genes {
			require.True(t, ranges[i].Contains(v), "gene %d out of range: %f", i, v)
		}
	}
}

func TestMultiRange_ScaledMutationAndNeighbors(t *testing.T) {
	t.Parallel()
	ranges := []allele.Interval[float64]{
		allele.NewInterval(0.0, 1.0),
		allele.NewInterval(0.0, 10.0),
	}
	g, err := NewMultiRange(MultiRangeConfig[float64]{
		AlleleRanges: ranges,
		MutationType: MutationScaled,
		AlleleMutationScaledRanges: [][]allele.Interval[float64]{
			{allele.NewInterval(-0.25, 0.25), allele.NewInterval(-2.5, 2.5)},
		},
		SeedGenesList: [][]float64{{0.5, 5.0}},
	})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(0))
	c := g.NewRandomChromosome(rng)
	pop := population.NewEmpty[float64](4)

	g.FillNeighboringPopulation(c, pop, 0, rng)

	assert.Equal(t, int64(4), g.NeighboringPopulationSize().Int64())
	require.Equal(t, 4, pop.Size())
	for _, n := range pop.Chromosomes {
		for i, v := range n.Genes {
			require.True(t, ranges[i].Contains(v))
		}
	}
}

func TestMultiRange_StaticMatrixCapacity(t *testing.T) {
	t.Parallel()
	g, err := NewMultiRange(MultiRangeConfig[float64]{
		AlleleRanges: []allele.Interval[float64]{
			allele.NewInterval(0.0, 1.0),
			allele.NewInterval(0.0, 1.0),
		},
		Storage:        StorageStaticMatrix,
		MatrixCapacity: 2,
	})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(0))

	g.NewRandomChromosome(rng)
	b := g.NewRandomChromosome(rng)
	g.ReleaseChromosome(b)
	g.NewRandomChromosome(rng)
	assert.Panics(t, func() { g.NewRandomChromosome(rng) })
}

func TestMultiRange_Permutations(t *testing.T) {
	t.Parallel()
	g, err := NewMultiRange(MultiRangeConfig[int]{
		AlleleRanges: []allele.Interval[int]{
			allele.NewInterval(0, 2),
			allele.NewInterval(0, 3),
		},
		MutationType: MutationScaled,
		AlleleMutationScaledRanges: [][]allele.Interval[int]{
			{allele.NewInterval(-1, 1), allele.NewInterval(-1, 1)},
		},
	})
	require.NoError(t, err)
	require.NoError(t, g.Permutable())

	// 3 values for gene 0, 4 for gene 1.
	assert.Equal(t, int64(12), g.ChromosomePermutationsSize().Int64())
	count := 0
	g.ForEachPermutation(func(genes []int) bool {
		count++
		return true
	})
	assert.Equal(t, 12, count)
}
