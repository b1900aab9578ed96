// Package hillclimb implements the steepest-ascent driver. Each round it
// regenerates every scale-bounded neighbor of the incumbent genome, scores
// them, and takes the best; the mutation scale narrows when progress stalls.
package hillclimb

import (
	"context"
	"math/rand"
	"time"

	"github.com/tomhoffer/evolvium/internal/chromosome"
	"github.com/tomhoffer/evolvium/internal/fitness"
	"github.com/tomhoffer/evolvium/internal/genotype"
	"github.com/tomhoffer/evolvium/internal/population"
	"github.com/tomhoffer/evolvium/internal/strategy"
)

// HillClimb is the steepest-ascent strategy over a HillClimbGenotype.
type HillClimb[A comparable] struct {
	genotype  genotype.HillClimbGenotype[A]
	runner    *fitness.Runner[A]
	config    strategy.Config
	reporter  strategy.Reporter[A]
	state     *strategy.State
	incumbent *chromosome.Chromosome[A]
	neighbors *population.Population[A]
	rng       *rand.Rand
}

// New validates the configuration and builds a HillClimb strategy. reporter
// may be nil, defaulting to a no-op.
func New[A comparable](
	g genotype.HillClimbGenotype[A],
	f fitness.Fitness[A],
	cfg strategy.Config,
	reporter strategy.Reporter[A],
) (*HillClimb[A], error) {
	if g == nil {
		return nil, genotype.NewConfigError("hill climb requires a genotype", nil)
	}
	if f == nil {
		return nil, genotype.NewConfigError("hill climb requires a fitness", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var cache *fitness.Cache
	if cfg.FitnessCacheSize > 0 {
		if !g.GenesHashing() {
			return nil, genotype.NewConfigError("fitness cache requires genes hashing on the genotype", nil)
		}
		var err error
		cache, err = fitness.NewCache(cfg.FitnessCacheSize)
		if err != nil {
			return nil, genotype.NewConfigError("building fitness cache", err)
		}
	}
	if reporter == nil {
		reporter = strategy.NoopReporter[A]{}
	}
	seed := cfg.RNGSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &HillClimb[A]{
		genotype: g,
		runner:   fitness.NewRunner(f, cfg.ParFitness, cache),
		config:   cfg,
		reporter: reporter,
		state:    strategy.NewState(),
		rng:      rand.New(rand.NewSource(seed)),
	}, nil
}

// State exposes the run bookkeeping.
func (h *HillClimb[A]) State() *strategy.State {
	return h.state
}

// BestGenes returns the incumbent genome.
func (h *HillClimb[A]) BestGenes() []A {
	return h.genotype.BestGenes()
}

// BestFitnessScore returns the incumbent score, false when nothing has been
// evaluated yet.
func (h *HillClimb[A]) BestFitnessScore() (int64, bool) {
	return h.state.BestFitnessScore, h.state.HasBestFitnessScore
}

// Run executes the steepest-ascent loop until a termination condition holds
// or ctx is cancelled.
func (h *HillClimb[A]) Run(ctx context.Context) error {
	setupStart := time.Now()
	h.incumbent = h.genotype.NewRandomChromosome(h.rng)
	expected := int(h.genotype.NeighboringPopulationSize().Int64())
	h.neighbors = population.NewEmpty[A](expected)
	h.state.AddDuration(strategy.PhaseSetup, time.Since(setupStart))

	h.reporter.OnStart(h.genotype, h.state, &h.config)

	if err := h.runFitness(ctx, population.New([]*chromosome.Chromosome[A]{h.incumbent})); err != nil {
		return h.exit(err)
	}
	if h.incumbent.HasFitnessScore {
		h.state.UpdateBest(h.incumbent.FitnessScore)
	}
	h.genotype.SaveBestGenes(h.incumbent)

	maxScaleIndex := h.genotype.MaxScaleIndex()
	for !h.config.IsFinished(h.state, maxScaleIndex) {
		if err := ctx.Err(); err != nil {
			return h.exit(err)
		}
		h.state.CurrentGeneration++

		h.genotype.LoadBestGenes(h.incumbent)
		h.neighbors.Clear(h.genotype.ReleaseChromosome)
		h.genotype.FillNeighboringPopulation(h.incumbent, h.neighbors, h.state.CurrentScaleIndex, h.rng)

		if err := h.runFitness(ctx, h.neighbors); err != nil {
			return h.exit(err)
		}
		if h.config.ReplaceOnEqualFitness {
			h.neighbors.Shuffle(h.rng)
		}

		h.updateBest()
		h.advanceScale(maxScaleIndex)
		h.reporter.OnNewGeneration(h.genotype, h.state, &h.config)
	}

	h.reporter.OnFinish(h.genotype, h.state, &h.config)
	return h.exit(nil)
}

func (h *HillClimb[A]) runFitness(ctx context.Context, pop *population.Population[A]) error {
	start := time.Now()
	err := h.runner.Run(ctx, pop, h.genotype)
	h.state.AddDuration(strategy.PhaseFitness, time.Since(start))
	if cache := h.runner.Cache(); cache != nil {
		h.state.CacheHits, h.state.CacheMisses = cache.Counters()
	}
	return err
}

// updateBest compares the best neighbor against the incumbent under the
// fitness ordering.
func (h *HillClimb[A]) updateBest() {
	best, err := h.neighbors.Best(func(a, b *chromosome.Chromosome[A]) int {
		return fitness.CompareChromosomes(h.config.FitnessOrdering, a, b)
	})
	if err != nil || !best.HasFitnessScore {
		h.state.StaleGenerations++
		return
	}
	switch fitness.CompareValues(
		h.config.FitnessOrdering,
		best.FitnessScore, true,
		h.state.BestFitnessScore, h.state.HasBestFitnessScore,
	) {
	case 1:
		h.state.UpdateBest(best.FitnessScore)
		h.genotype.SaveBestGenes(best)
		h.reporter.OnNewBestChromosome(h.genotype, h.state, &h.config)
	case 0:
		h.state.StaleGenerations++
		if h.config.ReplaceOnEqualFitness {
			h.genotype.SaveBestGenes(best)
			h.reporter.OnNewBestChromosomeEqualFitness(h.genotype, h.state, &h.config)
		}
	default:
		h.state.StaleGenerations++
	}
}

// advanceScale narrows the mutation scale once the incumbent is already
// stale, never on a generation counter.
func (h *HillClimb[A]) advanceScale(maxScaleIndex int) {
	if maxScaleIndex < 0 {
		return
	}
	if h.config.MaxStaleGenerations > 0 &&
		h.state.StaleGenerations >= h.config.MaxStaleGenerations &&
		h.state.CurrentScaleIndex < maxScaleIndex {
		h.state.CurrentScaleIndex++
		h.state.StaleGenerations = 0
	}
}

func (h *HillClimb[A]) exit(err error) error {
	h.reporter.OnExit(h.genotype, h.state, &h.config)
	return err
}
