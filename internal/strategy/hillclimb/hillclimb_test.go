package hillclimb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomhoffer/evolvium/internal/allele"
	"github.com/tomhoffer/evolvium/internal/fitness"
	"github.com/tomhoffer/evolvium/internal/genotype"
	"github.com/tomhoffer/evolvium/internal/strategy"
)

func TestNew_BuildErrors(t *testing.T) {
	t.Parallel()
	g, err := genotype.NewBinary(genotype.BinaryConfig{GenesSize: 8})
	require.NoError(t, err)

	var ce *genotype.ConfigError

	_, err = New[bool](nil, fitness.CountTrue{}, strategy.Config{MaxGenerations: 5}, nil)
	assert.ErrorAs(t, err, &ce)

	_, err = New[bool](g, nil, strategy.Config{MaxGenerations: 5}, nil)
	assert.ErrorAs(t, err, &ce)

	_, err = New[bool](g, fitness.CountTrue{}, strategy.Config{}, nil)
	assert.ErrorAs(t, err, &ce)

	_, err = New[bool](g, fitness.CountTrue{}, strategy.Config{MaxGenerations: 5, FitnessCacheSize: 10}, nil)
	assert.ErrorAs(t, err, &ce, "cache requires genes hashing")
}

// TestHillClimb_BinaryAscent climbs the count-true objective, which steepest
// ascent solves exactly: every round flips the single most profitable bit.
func TestHillClimb_BinaryAscent(t *testing.T) {
	t.Parallel()
	g, err := genotype.NewBinary(genotype.BinaryConfig{GenesSize: 12})
	require.NoError(t, err)
	h, err := New[bool](
		g,
		fitness.CountTrue{},
		strategy.Config{
			MaxStaleGenerations: 2,
			FitnessOrdering:     fitness.Maximize,
			RNGSeed:             1,
		},
		nil,
	)
	require.NoError(t, err)

	require.NoError(t, h.Run(context.Background()))

	score, ok := h.BestFitnessScore()
	require.True(t, ok)
	assert.Equal(t, int64(12), score)
	for _, gene := range h.BestGenes() {
		assert.True(t, gene)
	}
}

// TestHillClimb_ScaledDescent follows the documented scaling scenario: a sum
// objective over [0,1]^4 minimized from the all-ones seed, with a coarse and
// a fine scale. The coarse scale walks to zero in half-unit steps; the fine
// scale then stalls immediately and the run terminates.
func TestHillClimb_ScaledDescent(t *testing.T) {
	t.Parallel()
	g, err := genotype.NewRange(genotype.RangeConfig[float64]{
		GenesSize:    4,
		AlleleRange:  allele.NewInterval(0.0, 1.0),
		MutationType: genotype.MutationScaled,
		AlleleMutationScaledRanges: []allele.Interval[float64]{
			allele.NewInterval(-0.5, 0.5),
			allele.NewInterval(-0.05, 0.05),
		},
		SeedGenesList: [][]float64{{1.0, 1.0, 1.0, 1.0}},
	})
	require.NoError(t, err)
	h, err := New[float64](
		g,
		fitness.SumGenes[float64]{Precision: 1e-3},
		strategy.Config{
			MaxStaleGenerations: 1,
			FitnessOrdering:     fitness.Minimize,
			RNGSeed:             0,
		},
		nil,
	)
	require.NoError(t, err)

	require.NoError(t, h.Run(context.Background()))

	score, ok := h.BestFitnessScore()
	require.True(t, ok)
	assert.LessOrEqual(t, score, int64(1), "the descent reaches the zero genome")
	assert.Equal(t, 1, h.State().CurrentScaleIndex, "the scale narrows to the finest before terminating")
}

func TestHillClimb_ReplaceOnEqualFitnessShufflesTies(t *testing.T) {
	t.Parallel()
	g, err := genotype.NewBinary(genotype.BinaryConfig{GenesSize: 6})
	require.NoError(t, err)
	h, err := New[bool](
		g,
		fitness.Zero[bool]{},
		strategy.Config{
			MaxStaleGenerations:   3,
			FitnessOrdering:       fitness.Maximize,
			ReplaceOnEqualFitness: true,
			RNGSeed:               2,
		},
		nil,
	)
	require.NoError(t, err)

	require.NoError(t, h.Run(context.Background()))

	// Every genome scores zero, so the run goes stale and stops; the
	// equal-fitness path must still have captured a best genome.
	score, ok := h.BestFitnessScore()
	require.True(t, ok)
	assert.Zero(t, score)
	assert.Equal(t, 3, h.State().StaleGenerations)
}
