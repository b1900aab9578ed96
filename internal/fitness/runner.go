package fitness

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/tomhoffer/evolvium/internal/chromosome"
	"github.com/tomhoffer/evolvium/internal/genotype"
	"github.com/tomhoffer/evolvium/internal/population"
)

// Runner visits every chromosome lacking a fitness score and sets it, either
// sequentially or on a bounded worker pool. The cache, when present, is
// consulted by genes hash before any computation.
type Runner[A comparable] struct {
	fitness  Fitness[A]
	parallel bool
	workers  int
	cache    *Cache
}

// NewRunner builds a runner. cache may be nil to disable memoization;
// parallel evaluation uses one worker per available hardware thread.
func NewRunner[A comparable](f Fitness[A], parallel bool, cache *Cache) *Runner[A] {
	return &Runner[A]{
		fitness:  f,
		parallel: parallel,
		workers:  runtime.NumCPU(),
		cache:    cache,
	}
}

// Cache exposes the runner's cache, nil when disabled.
func (r *Runner[A]) Cache() *Cache {
	return r.cache
}

// Run scores all unevaluated chromosomes in the population. It blocks until
// the whole population's scores are in, and returns early only when ctx is
// cancelled.
func (r *Runner[A]) Run(ctx context.Context, pop *population.Population[A], g genotype.Genotype[A]) error {
	pending := make([]*chromosome.Chromosome[A], 0, pop.Size())
	for _, c := range pop.Chromosomes {
		if !c.HasFitnessScore {
			pending = append(pending, c)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	// Joint evaluation short-circuits the per-chromosome path when the
	// fitness supports it and no cache is configured.
	if pc, ok := r.fitness.(PopulationCalculator[A]); ok && r.cache == nil {
		scores := pc.CalculateForPopulation(pop, g)
		for i, c := range pop.Chromosomes {
			if c.HasFitnessScore || i >= len(scores) {
				continue
			}
			if scores[i].Valid {
				c.SetFitnessScore(scores[i].Value)
			}
		}
		return ctx.Err()
	}

	if !r.parallel || len(pending) == 1 {
		return r.runSequential(ctx, pending, g)
	}
	return r.runParallel(ctx, pending, g)
}

func (r *Runner[A]) runSequential(ctx context.Context, pending []*chromosome.Chromosome[A], g genotype.Genotype[A]) error {
	for _, c := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.evaluate(r.fitness, c, g)
	}
	return nil
}

// runParallel splits the pending chromosomes into per-worker chunks on an
// errgroup-bounded pool. Each worker holds its own clone of the fitness when
// the fitness carries mutable scratch state.
func (r *Runner[A]) runParallel(ctx context.Context, pending []*chromosome.Chromosome[A], g genotype.Genotype[A]) error {
	workers := r.workers
	if workers > len(pending) {
		workers = len(pending)
	}
	grp, gCtx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)

	chunkSize := (len(pending) + workers - 1) / workers
	for start := 0; start < len(pending); start += chunkSize {
		end := start + chunkSize
		if end > len(pending) {
			end = len(pending)
		}
		chunk := pending[start:end]
		grp.Go(func() error {
			f := r.fitness
			if cl, ok := f.(Cloner[A]); ok {
				f = cl.CloneFitness()
			}
			for _, c := range chunk {
				if err := gCtx.Err(); err != nil {
					return err
				}
				r.evaluate(f, c, g)
			}
			return nil
		})
	}
	return grp.Wait()
}

// evaluate consults the cache by genes hash, computes on a miss, and stores
// the result.
func (r *Runner[A]) evaluate(f Fitness[A], c *chromosome.Chromosome[A], g genotype.Genotype[A]) {
	if r.cache != nil && c.HasGenesHash {
		if v, ok := r.cache.Read(c.GenesHash); ok {
			c.SetFitnessScore(v)
			return
		}
	}
	v, ok := f.CalculateForChromosome(c, g)
	if !ok {
		return
	}
	c.SetFitnessScore(v)
	if r.cache != nil && c.HasGenesHash {
		r.cache.Write(c.GenesHash, v)
	}
}
