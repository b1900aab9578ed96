package population

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomhoffer/evolvium/internal/chromosome"
)

func scored(score int64) *chromosome.Chromosome[int] {
	c := chromosome.New([]int{0})
	c.SetFitnessScore(score)
	return c
}

func byScoreDesc(a, b *chromosome.Chromosome[int]) int {
	switch {
	case !a.HasFitnessScore && !b.HasFitnessScore:
		return 0
	case !a.HasFitnessScore:
		return -1
	case !b.HasFitnessScore:
		return 1
	case a.FitnessScore > b.FitnessScore:
		return 1
	case a.FitnessScore < b.FitnessScore:
		return -1
	default:
		return 0
	}
}

func TestPopulation_Best(t *testing.T) {
	t.Parallel()

	t.Run("empty population returns error", func(t *testing.T) {
		t.Parallel()
		p := NewEmpty[int](0)
		_, err := p.Best(byScoreDesc)
		assert.ErrorIs(t, err, ErrPopulationEmpty)
	})

	t.Run("finds the highest score", func(t *testing.T) {
		t.Parallel()
		p := New([]*chromosome.Chromosome[int]{scored(3), scored(9), scored(1)})
		best, err := p.Best(byScoreDesc)
		require.NoError(t, err)
		assert.Equal(t, int64(9), best.FitnessScore)
	})

	t.Run("unevaluated chromosomes lose", func(t *testing.T) {
		t.Parallel()
		unevaluated := chromosome.New([]int{0})
		p := New([]*chromosome.Chromosome[int]{unevaluated, scored(-5)})
		best, err := p.Best(byScoreDesc)
		require.NoError(t, err)
		assert.Equal(t, int64(-5), best.FitnessScore)
	})
}

func TestPopulation_AgeManagement(t *testing.T) {
	t.Parallel()
	a, b, c := scored(1), scored(2), scored(3)
	b.Age = 2
	p := New([]*chromosome.Chromosome[int]{a, b, c})

	p.IncrementAges()
	assert.Equal(t, 1, a.Age)
	assert.Equal(t, 3, b.Age)

	var released []*chromosome.Chromosome[int]
	p.FilterAge(2, func(dropped *chromosome.Chromosome[int]) {
		released = append(released, dropped)
	})
	assert.Equal(t, 2, p.Size())
	require.Len(t, released, 1)
	assert.Same(t, b, released[0])
}

func TestPopulation_FitnessScoreUniformity(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		scores   []int64
		expected float64
	}{
		{name: "All identical", scores: []int64{5, 5, 5, 5}, expected: 1.0},
		{name: "Half modal", scores: []int64{5, 5, 1, 2}, expected: 0.5},
		{name: "All distinct", scores: []int64{1, 2, 3, 4}, expected: 0.25},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := NewEmpty[int](len(tc.scores))
			for _, s := range tc.scores {
				p.Push(scored(s))
			}
			assert.InDelta(t, tc.expected, p.FitnessScoreUniformity(), 1e-9)
		})
	}

	t.Run("unevaluated population has zero uniformity", func(t *testing.T) {
		t.Parallel()
		p := New([]*chromosome.Chromosome[int]{chromosome.New([]int{0})})
		assert.Zero(t, p.FitnessScoreUniformity())
	})
}

func TestPopulation_FitnessScoreCardinality(t *testing.T) {
	t.Parallel()
	p := New([]*chromosome.Chromosome[int]{scored(1), scored(1), scored(2), chromosome.New([]int{0})})
	assert.Equal(t, 2, p.FitnessScoreCardinality())
}

func TestPopulation_Clear(t *testing.T) {
	t.Parallel()
	p := New([]*chromosome.Chromosome[int]{scored(1), scored(2)})
	released := 0
	p.Clear(func(*chromosome.Chromosome[int]) { released++ })
	assert.Zero(t, p.Size())
	assert.Equal(t, 2, released)
}

func TestPopulation_Shuffle(t *testing.T) {
	t.Parallel()
	p := NewEmpty[int](20)
	for i := 0; i < 20; i++ {
		p.Push(scored(int64(i)))
	}
	p.Shuffle(rand.New(rand.NewSource(1)))

	inOrder := true
	for i, c := range p.Chromosomes {
		if c.FitnessScore != int64(i) {
			inOrder = false
			break
		}
	}
	assert.False(t, inOrder, "shuffle must change the order")
	assert.Equal(t, 20, p.Size())
}
