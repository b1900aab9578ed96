package extension

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomhoffer/evolvium/internal/fitness"
	"github.com/tomhoffer/evolvium/internal/genotype"
	"github.com/tomhoffer/evolvium/internal/population"
)

func newConvergedPopulation(t *testing.T, size int, hashing bool) (*genotype.Binary, *population.Population[bool]) {
	t.Helper()
	g, err := genotype.NewBinary(genotype.BinaryConfig{GenesSize: 8, GenesHashing: hashing})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(13))
	pop := population.NewEmpty[bool](size)
	for i := 0; i < size; i++ {
		c := g.NewRandomChromosome(rng)
		c.SetFitnessScore(5)
		pop.Push(c)
	}
	return g, pop
}

func TestNoop_LeavesPopulationAlone(t *testing.T) {
	t.Parallel()
	g, pop := newConvergedPopulation(t, 10, false)
	NewNoop[bool]().Extend(g, pop, fitness.Maximize, 0, rand.New(rand.NewSource(0)))
	assert.Equal(t, 10, pop.Size())
}

func TestMassExtinction_Extend(t *testing.T) {
	t.Parallel()

	t.Run("culls a converged population to the survival rate", func(t *testing.T) {
		t.Parallel()
		g, pop := newConvergedPopulation(t, 20, false)
		x, err := NewMassExtinction[bool](2, 0.25)
		require.NoError(t, err)

		x.Extend(g, pop, fitness.Maximize, 0, rand.New(rand.NewSource(0)))
		assert.Equal(t, 5, pop.Size())
	})

	t.Run("leaves a diverse population alone", func(t *testing.T) {
		t.Parallel()
		g, pop := newConvergedPopulation(t, 10, false)
		for i, c := range pop.Chromosomes {
			c.SetFitnessScore(int64(i))
		}
		x, err := NewMassExtinction[bool](2, 0.25)
		require.NoError(t, err)

		x.Extend(g, pop, fitness.Maximize, 0, rand.New(rand.NewSource(0)))
		assert.Equal(t, 10, pop.Size())
	})

	t.Run("rejects invalid configuration", func(t *testing.T) {
		t.Parallel()
		var ee *ExtensionError
		_, err := NewMassExtinction[bool](0, 0.5)
		assert.ErrorAs(t, err, &ee)
		_, err = NewMassExtinction[bool](2, 1.5)
		assert.ErrorAs(t, err, &ee)
	})
}

func TestMassDegeneration_Extend(t *testing.T) {
	t.Parallel()
	g, pop := newConvergedPopulation(t, 10, false)
	snapshot := make([][]bool, pop.Size())
	for i, c := range pop.Chromosomes {
		snapshot[i] = append([]bool(nil), c.Genes...)
	}
	x, err := NewMassDegeneration[bool](2, 3)
	require.NoError(t, err)

	x.Extend(g, pop, fitness.Maximize, 0, rand.New(rand.NewSource(0)))

	assert.Equal(t, 10, pop.Size(), "degeneration never culls")
	changed := 0
	for i, c := range pop.Chromosomes {
		for j := range c.Genes {
			if c.Genes[j] != snapshot[i][j] {
				changed++
				break
			}
		}
		assert.False(t, c.HasFitnessScore, "mutation invalidates fitness")
	}
	assert.Greater(t, changed, 0)
}

func TestMassGenesis_Extend(t *testing.T) {
	t.Parallel()
	g, pop := newConvergedPopulation(t, 10, false)
	pop.Chromosomes[3].SetFitnessScore(9)
	pop.Chromosomes[7].SetFitnessScore(8)
	best := pop.Chromosomes[3]
	runnerUp := pop.Chromosomes[7]
	x, err := NewMassGenesis[bool](3)
	require.NoError(t, err)

	x.Extend(g, pop, fitness.Maximize, 0, rand.New(rand.NewSource(0)))

	require.Equal(t, 2, pop.Size())
	assert.Same(t, best, pop.Chromosomes[0])
	assert.Same(t, runnerUp, pop.Chromosomes[1])
}

func TestMassDeduplication_Extend(t *testing.T) {
	t.Parallel()
	g, pop := newConvergedPopulation(t, 6, true)
	for i, c := range pop.Chromosomes {
		for j := range c.Genes {
			c.Genes[j] = i&(1<<j) != 0
		}
		g.ResetChromosomeState(c)
		c.SetFitnessScore(5)
	}
	duplicate := g.NewChromosomeFrom(pop.Chromosomes[0])
	duplicate.SetFitnessScore(5)
	pop.Push(duplicate)

	x := NewMassDeduplication[bool]()
	x.Extend(g, pop, fitness.Maximize, 0, rand.New(rand.NewSource(0)))

	assert.Equal(t, 6, pop.Size(), "the duplicated genome is removed")
	seen := make(map[uint64]struct{})
	for _, c := range pop.Chromosomes {
		_, dup := seen[c.GenesHash]
		assert.False(t, dup)
		seen[c.GenesHash] = struct{}{}
	}
}
