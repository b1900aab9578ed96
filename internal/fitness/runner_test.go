package fitness

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomhoffer/evolvium/internal/chromosome"
	"github.com/tomhoffer/evolvium/internal/genotype"
	"github.com/tomhoffer/evolvium/internal/population"
)

// countingFitness counts CalculateForChromosome invocations through a shared
// counter so cache hits are observable.
type countingFitness struct {
	calls *int
}

func (f countingFitness) CalculateForChromosome(c *chromosome.Chromosome[bool], g genotype.Genotype[bool]) (Value, bool) {
	*f.calls++
	count := Value(0)
	for _, gene := range c.Genes {
		if gene {
			count++
		}
	}
	return count, true
}

// cloningFitness records whether the parallel runner requested clones.
type cloningFitness struct {
	cloned *int
}

func (f cloningFitness) CalculateForChromosome(c *chromosome.Chromosome[bool], g genotype.Genotype[bool]) (Value, bool) {
	return CountTrue{}.CalculateForChromosome(c, g)
}

func (f cloningFitness) CloneFitness() Fitness[bool] {
	*f.cloned++
	return f
}

// populationSum evaluates the whole population jointly.
type populationSum struct{}

func (populationSum) CalculateForChromosome(c *chromosome.Chromosome[bool], g genotype.Genotype[bool]) (Value, bool) {
	return CountTrue{}.CalculateForChromosome(c, g)
}

func (populationSum) CalculateForPopulation(pop *population.Population[bool], g genotype.Genotype[bool]) []Score {
	scores := make([]Score, pop.Size())
	for i, c := range pop.Chromosomes {
		v, ok := CountTrue{}.CalculateForChromosome(c, g)
		scores[i] = Score{Value: v, Valid: ok}
	}
	return scores
}

func newBinaryPopulation(t *testing.T, size int, hashing bool) (*population.Population[bool], *genotype.Binary) {
	t.Helper()
	g, err := genotype.NewBinary(genotype.BinaryConfig{GenesSize: 16, GenesHashing: hashing})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(7))
	pop := population.NewEmpty[bool](size)
	for i := 0; i < size; i++ {
		pop.Push(g.NewRandomChromosome(rng))
	}
	return pop, g
}

func TestRunner_SequentialAndParallelAgree(t *testing.T) {
	t.Parallel()
	pop, g := newBinaryPopulation(t, 50, false)
	popParallel, _ := newBinaryPopulation(t, 50, false)

	require.NoError(t, NewRunner[bool](CountTrue{}, false, nil).Run(context.Background(), pop, g))
	require.NoError(t, NewRunner[bool](CountTrue{}, true, nil).Run(context.Background(), popParallel, g))

	for i := range pop.Chromosomes {
		require.True(t, pop.Chromosomes[i].HasFitnessScore)
		require.True(t, popParallel.Chromosomes[i].HasFitnessScore)
		assert.Equal(t, pop.Chromosomes[i].FitnessScore, popParallel.Chromosomes[i].FitnessScore)
	}
}

func TestRunner_SkipsEvaluatedChromosomes(t *testing.T) {
	t.Parallel()
	pop, g := newBinaryPopulation(t, 5, false)
	pop.Chromosomes[0].SetFitnessScore(999)

	calls := 0
	require.NoError(t, NewRunner[bool](countingFitness{calls: &calls}, false, nil).Run(context.Background(), pop, g))

	assert.Equal(t, 4, calls)
	assert.Equal(t, Value(999), pop.Chromosomes[0].FitnessScore)
}

func TestRunner_CacheShortCircuitsDuplicateGenes(t *testing.T) {
	t.Parallel()
	g, err := genotype.NewBinary(genotype.BinaryConfig{GenesSize: 8, GenesHashing: true})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(7))
	original := g.NewRandomChromosome(rng)
	duplicate := g.NewChromosomeFrom(original)
	pop := population.New([]*chromosome.Chromosome[bool]{original, duplicate})

	cache, err := NewCache(16)
	require.NoError(t, err)
	calls := 0
	require.NoError(t, NewRunner[bool](countingFitness{calls: &calls}, false, cache).Run(context.Background(), pop, g))

	assert.Equal(t, 1, calls, "identical genes hit the cache")
	assert.Equal(t, original.FitnessScore, duplicate.FitnessScore)

	hits, misses := cache.Counters()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestRunner_ParallelClonesFitness(t *testing.T) {
	t.Parallel()
	pop, g := newBinaryPopulation(t, 40, false)

	cloned := 0
	require.NoError(t, NewRunner[bool](cloningFitness{cloned: &cloned}, true, nil).Run(context.Background(), pop, g))

	assert.Greater(t, cloned, 0, "each parallel worker takes its own clone")
	for _, c := range pop.Chromosomes {
		assert.True(t, c.HasFitnessScore)
	}
}

func TestRunner_PopulationCalculator(t *testing.T) {
	t.Parallel()
	pop, g := newBinaryPopulation(t, 10, false)

	require.NoError(t, NewRunner[bool](populationSum{}, false, nil).Run(context.Background(), pop, g))

	for _, c := range pop.Chromosomes {
		require.True(t, c.HasFitnessScore)
		expected, _ := CountTrue{}.CalculateForChromosome(c, g)
		assert.Equal(t, expected, c.FitnessScore)
	}
}

func TestRunner_CancelledContext(t *testing.T) {
	t.Parallel()
	pop, g := newBinaryPopulation(t, 10, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewRunner[bool](CountTrue{}, false, nil).Run(ctx, pop, g)
	assert.ErrorIs(t, err, context.Canceled)
}
