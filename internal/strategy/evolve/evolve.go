// Package evolve implements the generational genetic-algorithm driver. Each
// generation ages and culls the population, applies the extension, crossover
// and mutation operators, evaluates fitness, selects survivors and tracks
// the best genome on the genotype's best-genes buffer.
package evolve

import (
	"context"
	"math/rand"
	"time"

	"github.com/tomhoffer/evolvium/internal/chromosome"
	"github.com/tomhoffer/evolvium/internal/crossover"
	"github.com/tomhoffer/evolvium/internal/extension"
	"github.com/tomhoffer/evolvium/internal/fitness"
	"github.com/tomhoffer/evolvium/internal/genotype"
	"github.com/tomhoffer/evolvium/internal/mutate"
	"github.com/tomhoffer/evolvium/internal/population"
	"github.com/tomhoffer/evolvium/internal/selection"
	"github.com/tomhoffer/evolvium/internal/strategy"
)

// Evolve is the generational strategy over an EvolveGenotype.
type Evolve[A comparable] struct {
	genotype  genotype.EvolveGenotype[A]
	runner    *fitness.Runner[A]
	mutator   mutate.IMutator[A]
	crossover crossover.ICrossover[A]
	selector  selection.ISelector[A]
	extension extension.IExtension[A]
	config    strategy.Config
	reporter  strategy.Reporter[A]
	state     *strategy.State
	pop       *population.Population[A]
	rng       *rand.Rand
}

// New validates the configuration and builds an Evolve strategy. extension
// and reporter may be nil, defaulting to no-ops.
func New[A comparable](
	g genotype.EvolveGenotype[A],
	f fitness.Fitness[A],
	mutator mutate.IMutator[A],
	xover crossover.ICrossover[A],
	selector selection.ISelector[A],
	ext extension.IExtension[A],
	cfg strategy.Config,
	reporter strategy.Reporter[A],
) (*Evolve[A], error) {
	if g == nil {
		return nil, genotype.NewConfigError("evolve requires a genotype", nil)
	}
	if f == nil {
		return nil, genotype.NewConfigError("evolve requires a fitness", nil)
	}
	if mutator == nil {
		return nil, genotype.NewConfigError("evolve requires a mutator", nil)
	}
	if xover == nil {
		return nil, genotype.NewConfigError("evolve requires a crossover", nil)
	}
	if selector == nil {
		return nil, genotype.NewConfigError("evolve requires a selector", nil)
	}
	if cfg.TargetPopulationSize <= 0 {
		return nil, genotype.NewConfigError("evolve requires a positive target population size", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if xover.RequiresGeneCrossover() && !g.SupportsGeneCrossover() {
		return nil, genotype.NewConfigError("gene and point crossover are not supported by unique genotypes; use clone or rejuvenate", nil)
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
	if ext == nil {
		ext = extension.NewNoop[A]()
	}
	if reporter == nil {
		reporter = strategy.NoopReporter[A]{}
	}
	seed := cfg.RNGSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Evolve[A]{
		genotype:  g,
		runner:    fitness.NewRunner(f, cfg.ParFitness, cache),
		mutator:   mutator,
		crossover: xover,
		selector:  selector,
		extension: ext,
		config:    cfg,
		reporter:  reporter,
		state:     strategy.NewState(),
		rng:       rand.New(rand.NewSource(seed)),
	}, nil
}

// State exposes the run bookkeeping.
func (e *Evolve[A]) State() *strategy.State {
	return e.state
}

// Population exposes the live population.
func (e *Evolve[A]) Population() *population.Population[A] {
	return e.pop
}

// BestGenes returns the incumbent genome.
func (e *Evolve[A]) BestGenes() []A {
	return e.genotype.BestGenes()
}

// BestFitnessScore returns the incumbent score, false when nothing has been
// evaluated yet.
func (e *Evolve[A]) BestFitnessScore() (int64, bool) {
	return e.state.BestFitnessScore, e.state.HasBestFitnessScore
}

// Run executes the generational loop until a termination condition holds or
// ctx is cancelled.
func (e *Evolve[A]) Run(ctx context.Context) error {
	setupStart := time.Now()
	e.pop = population.NewEmpty[A](e.config.TargetPopulationSize)
	for i := 0; i < e.config.TargetPopulationSize; i++ {
		e.pop.Push(e.genotype.NewRandomChromosome(e.rng))
	}
	e.state.AddDuration(strategy.PhaseSetup, time.Since(setupStart))

	e.reporter.OnStart(e.genotype, e.state, &e.config)

	// Score and rank the seed population before the first generation so
	// crossover has an incumbent ordering to work from.
	if err := e.runFitness(ctx); err != nil {
		return e.exit(err)
	}
	e.updateBest()

	maxScaleIndex := e.genotype.MaxScaleIndex()
	for !e.config.IsFinished(e.state, maxScaleIndex) {
		if err := ctx.Err(); err != nil {
			return e.exit(err)
		}
		e.state.CurrentGeneration++

		e.pop.IncrementAges()
		if e.config.MaxChromosomeAge > 0 {
			e.pop.FilterAge(e.config.MaxChromosomeAge, e.genotype.ReleaseChromosome)
		}

		e.timed(strategy.PhaseExtension, func() {
			e.extension.Extend(e.genotype, e.pop, e.config.FitnessOrdering, e.state.CurrentScaleIndex, e.rng)
		})
		e.timed(strategy.PhaseCrossover, func() {
			e.crossover.Crossover(e.genotype, e.pop, e.config.TargetPopulationSize, e.rng)
		})
		e.timed(strategy.PhaseMutate, func() {
			e.mutator.Mutate(e.genotype, e.pop, e.state.CurrentScaleIndex, e.rng)
		})
		if err := e.runFitness(ctx); err != nil {
			return e.exit(err)
		}
		e.timed(strategy.PhaseSelect, func() {
			e.selector.Select(e.genotype, e.pop, e.config.FitnessOrdering, e.config.TargetPopulationSize, e.rng)
		})

		e.updateBest()
		e.advanceScale(maxScaleIndex)
		e.reporter.OnNewGeneration(e.genotype, e.state, &e.config)
	}

	e.reporter.OnFinish(e.genotype, e.state, &e.config)
	return e.exit(nil)
}

func (e *Evolve[A]) timed(phase strategy.Phase, fn func()) {
	start := time.Now()
	fn()
	e.state.AddDuration(phase, time.Since(start))
}

func (e *Evolve[A]) runFitness(ctx context.Context) error {
	start := time.Now()
	err := e.runner.Run(ctx, e.pop, e.genotype)
	e.state.AddDuration(strategy.PhaseFitness, time.Since(start))
	if cache := e.runner.Cache(); cache != nil {
		e.state.CacheHits, e.state.CacheMisses = cache.Counters()
	}
	return err
}

// updateBest compares the surviving population's best against the incumbent
// under the fitness ordering.
func (e *Evolve[A]) updateBest() {
	best, err := e.pop.Best(func(a, b *chromosome.Chromosome[A]) int {
		return fitness.CompareChromosomes(e.config.FitnessOrdering, a, b)
	})
	if err != nil || !best.HasFitnessScore {
		e.state.StaleGenerations++
		return
	}
	switch fitness.CompareValues(
		e.config.FitnessOrdering,
		best.FitnessScore, true,
		e.state.BestFitnessScore, e.state.HasBestFitnessScore,
	) {
	case 1:
		e.state.UpdateBest(best.FitnessScore)
		e.genotype.SaveBestGenes(best)
		e.reporter.OnNewBestChromosome(e.genotype, e.state, &e.config)
	case 0:
		e.state.StaleGenerations++
		if e.config.ReplaceOnEqualFitness {
			e.genotype.SaveBestGenes(best)
			e.reporter.OnNewBestChromosomeEqualFitness(e.genotype, e.state, &e.config)
		}
	default:
		e.state.StaleGenerations++
	}
}

// advanceScale narrows the mutation scale once progress has stalled,
// interleaving exploration and exploitation. It only fires when the
// incumbent is already stale, never on a generation counter.
func (e *Evolve[A]) advanceScale(maxScaleIndex int) {
	if maxScaleIndex < 0 {
		return
	}
	if e.config.MaxStaleGenerations > 0 &&
		e.state.StaleGenerations >= e.config.MaxStaleGenerations &&
		e.state.CurrentScaleIndex < maxScaleIndex {
		e.state.CurrentScaleIndex++
		e.state.StaleGenerations = 0
	}
}

func (e *Evolve[A]) exit(err error) error {
	e.reporter.OnExit(e.genotype, e.state, &e.config)
	return err
}
