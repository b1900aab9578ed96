package selection

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomhoffer/evolvium/internal/fitness"
	"github.com/tomhoffer/evolvium/internal/genotype"
	"github.com/tomhoffer/evolvium/internal/population"
)

func newScoredPopulation(t *testing.T, scores []int64) (*genotype.Binary, *population.Population[bool]) {
	t.Helper()
	g, err := genotype.NewBinary(genotype.BinaryConfig{GenesSize: 4})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(11))
	pop := population.NewEmpty[bool](len(scores))
	for _, s := range scores {
		c := g.NewRandomChromosome(rng)
		c.SetFitnessScore(s)
		pop.Push(c)
	}
	return g, pop
}

func TestElite_Select(t *testing.T) {
	t.Parallel()

	t.Run("keeps the top scores under Maximize", func(t *testing.T) {
		t.Parallel()
		g, pop := newScoredPopulation(t, []int64{3, 9, 1, 7, 5})
		NewElite[bool]().Select(g, pop, fitness.Maximize, 3, rand.New(rand.NewSource(0)))

		require.Equal(t, 3, pop.Size())
		assert.Equal(t, int64(9), pop.Chromosomes[0].FitnessScore)
		assert.Equal(t, int64(7), pop.Chromosomes[1].FitnessScore)
		assert.Equal(t, int64(5), pop.Chromosomes[2].FitnessScore)
	})

	t.Run("keeps the bottom scores under Minimize", func(t *testing.T) {
		t.Parallel()
		g, pop := newScoredPopulation(t, []int64{3, 9, 1, 7, 5})
		NewElite[bool]().Select(g, pop, fitness.Minimize, 2, rand.New(rand.NewSource(0)))

		require.Equal(t, 2, pop.Size())
		assert.Equal(t, int64(1), pop.Chromosomes[0].FitnessScore)
		assert.Equal(t, int64(3), pop.Chromosomes[1].FitnessScore)
	})

	t.Run("is stable under ties", func(t *testing.T) {
		t.Parallel()
		g, pop := newScoredPopulation(t, []int64{5, 5, 5})
		first := pop.Chromosomes[0]
		second := pop.Chromosomes[1]
		NewElite[bool]().Select(g, pop, fitness.Maximize, 2, rand.New(rand.NewSource(0)))

		require.Equal(t, 2, pop.Size())
		assert.Same(t, first, pop.Chromosomes[0])
		assert.Same(t, second, pop.Chromosomes[1])
	})

	t.Run("unevaluated chromosomes sort to the loser end", func(t *testing.T) {
		t.Parallel()
		g, pop := newScoredPopulation(t, []int64{2, 4})
		rng := rand.New(rand.NewSource(0))
		pop.Push(g.NewRandomChromosome(rng))
		NewElite[bool]().Select(g, pop, fitness.Maximize, 2, rng)

		require.Equal(t, 2, pop.Size())
		for _, c := range pop.Chromosomes {
			assert.True(t, c.HasFitnessScore)
		}
	})
}

func TestNewTournament(t *testing.T) {
	t.Parallel()
	_, err := NewTournament[bool](0)
	var se *SelectionError
	assert.ErrorAs(t, err, &se)

	s, err := NewTournament[bool](4)
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestTournament_Select(t *testing.T) {
	t.Parallel()

	t.Run("reduces to the target size", func(t *testing.T) {
		t.Parallel()
		g, pop := newScoredPopulation(t, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
		s, err := NewTournament[bool](4)
		require.NoError(t, err)

		s.Select(g, pop, fitness.Maximize, 5, rand.New(rand.NewSource(0)))
		assert.Equal(t, 5, pop.Size())
	})

	t.Run("small population is kept intact", func(t *testing.T) {
		t.Parallel()
		g, pop := newScoredPopulation(t, []int64{1, 2})
		s, err := NewTournament[bool](4)
		require.NoError(t, err)

		s.Select(g, pop, fitness.Maximize, 5, rand.New(rand.NewSource(0)))
		assert.Equal(t, 2, pop.Size())
	})
}

// TestTournament_SurvivalBias verifies the selection pressure: over many
// runs, the fittest of ten chromosomes must survive at least ten times as
// often as the least fit.
func TestTournament_SurvivalBias(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(0))
	s, err := NewTournament[bool](4)
	require.NoError(t, err)

	const runs = 1000
	fittestSurvived, leastSurvived := 0, 0
	for run := 0; run < runs; run++ {
		g, pop := newScoredPopulation(t, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
		s.Select(g, pop, fitness.Maximize, 5, rng)
		for _, c := range pop.Chromosomes {
			switch c.FitnessScore {
			case 10:
				fittestSurvived++
			case 1:
				leastSurvived++
			}
		}
	}
	assert.Greater(t, fittestSurvived, 10*max(1, leastSurvived),
		"fittest survived %d, least fit survived %d", fittestSurvived, leastSurvived)
}
