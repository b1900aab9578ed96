// Package permutate implements the exhaustive-enumeration driver for finite,
// factorizable search spaces. Every genome the genotype can express is
// scored once; the exact space size is known up front for progress
// reporting.
package permutate

import (
	"context"
	"math/rand"
	"time"

	progressbar "github.com/schollz/progressbar/v3"

	"github.com/tomhoffer/evolvium/internal/chromosome"
	"github.com/tomhoffer/evolvium/internal/fitness"
	"github.com/tomhoffer/evolvium/internal/genotype"
	"github.com/tomhoffer/evolvium/internal/population"
	"github.com/tomhoffer/evolvium/internal/strategy"
)

// Permutate is the exhaustive-enumeration strategy over a PermutateGenotype.
type Permutate[A comparable] struct {
	genotype genotype.PermutateGenotype[A]
	runner   *fitness.Runner[A]
	config   strategy.Config
	reporter strategy.Reporter[A]
	state    *strategy.State
	rng      *rand.Rand

	// ShowProgress draws a progress bar sized from the exact permutation
	// count while enumerating.
	ShowProgress bool
}

// New validates the configuration and builds a Permutate strategy. The
// genotype must be permutable; enumeration is finite, so no ending condition
// is required.
func New[A comparable](
	g genotype.PermutateGenotype[A],
	f fitness.Fitness[A],
	cfg strategy.Config,
	reporter strategy.Reporter[A],
) (*Permutate[A], error) {
	if g == nil {
		return nil, genotype.NewConfigError("permutate requires a genotype", nil)
	}
	if f == nil {
		return nil, genotype.NewConfigError("permutate requires a fitness", nil)
	}
	if err := g.Permutable(); err != nil {
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
	return &Permutate[A]{
		genotype: g,
		runner:   fitness.NewRunner(f, false, cache),
		config:   cfg,
		reporter: reporter,
		state:    strategy.NewState(),
		rng:      rand.New(rand.NewSource(seed)),
	}, nil
}

// State exposes the run bookkeeping. CurrentGeneration counts enumerated
// genomes.
func (p *Permutate[A]) State() *strategy.State {
	return p.state
}

// BestGenes returns the best genome found.
func (p *Permutate[A]) BestGenes() []A {
	return p.genotype.BestGenes()
}

// BestFitnessScore returns the best score, false when nothing has been
// evaluated yet.
func (p *Permutate[A]) BestFitnessScore() (int64, bool) {
	return p.state.BestFitnessScore, p.state.HasBestFitnessScore
}

// Run enumerates the whole space, stopping early only on ctx cancellation or
// when a configured target fitness score is reached.
func (p *Permutate[A]) Run(ctx context.Context) error {
	total := p.genotype.ChromosomePermutationsSize()

	var bar *progressbar.ProgressBar
	if p.ShowProgress {
		if total.IsInt64() {
			bar = progressbar.Default(total.Int64())
		} else {
			bar = progressbar.Default(-1)
		}
	}

	carrier := p.genotype.NewRandomChromosome(p.rng)
	scratch := population.New([]*chromosome.Chromosome[A]{carrier})

	p.reporter.OnStart(p.genotype, p.state, &p.config)

	var runErr error
	p.genotype.ForEachPermutation(func(genes []A) bool {
		if err := ctx.Err(); err != nil {
			runErr = err
			return false
		}
		copy(carrier.Genes, genes)
		p.genotype.ResetChromosomeState(carrier)

		start := time.Now()
		if err := p.runner.Run(ctx, scratch, p.genotype); err != nil {
			runErr = err
			return false
		}
		p.state.AddDuration(strategy.PhaseFitness, time.Since(start))
		if cache := p.runner.Cache(); cache != nil {
			p.state.CacheHits, p.state.CacheMisses = cache.Counters()
		}

		p.state.CurrentGeneration++
		p.updateBest(carrier)
		if bar != nil {
			_ = bar.Add(1)
		}

		if p.config.TargetFitnessScore != nil && p.state.HasBestFitnessScore &&
			p.config.ValidGuardSatisfied(p.state) &&
			fitness.Satisfies(p.config.FitnessOrdering, p.state.BestFitnessScore, *p.config.TargetFitnessScore) {
			return false
		}
		return true
	})
	p.genotype.ReleaseChromosome(carrier)

	p.reporter.OnFinish(p.genotype, p.state, &p.config)
	p.reporter.OnExit(p.genotype, p.state, &p.config)
	return runErr
}

func (p *Permutate[A]) updateBest(c *chromosome.Chromosome[A]) {
	if !c.HasFitnessScore {
		p.state.StaleGenerations++
		return
	}
	switch fitness.CompareValues(
		p.config.FitnessOrdering,
		c.FitnessScore, true,
		p.state.BestFitnessScore, p.state.HasBestFitnessScore,
	) {
	case 1:
		p.state.UpdateBest(c.FitnessScore)
		p.genotype.SaveBestGenes(c)
		p.reporter.OnNewBestChromosome(p.genotype, p.state, &p.config)
	case 0:
		p.state.StaleGenerations++
		if p.config.ReplaceOnEqualFitness {
			p.genotype.SaveBestGenes(c)
			p.reporter.OnNewBestChromosomeEqualFitness(p.genotype, p.state, &p.config)
		}
	default:
		p.state.StaleGenerations++
	}
}
