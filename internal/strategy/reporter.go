package strategy

import (
	"go.uber.org/zap"

	"github.com/tomhoffer/evolvium/internal/genotype"
)

// LogReporter emits structured logs for every strategy hook. New-best events
// log at info, per-generation progress at debug.
type LogReporter[A comparable] struct {
	log *zap.Logger
}

// NewLogReporter creates a LogReporter. A nil logger falls back to a no-op
// logger.
func NewLogReporter[A comparable](log *zap.Logger) *LogReporter[A] {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogReporter[A]{log: log}
}

// OnStart implements Reporter.
func (r *LogReporter[A]) OnStart(g genotype.Genotype[A], s *State, c *Config) {
	r.log.Info("search started",
		zap.Int("genes_size", g.GenesSize()),
		zap.Int("target_population_size", c.TargetPopulationSize),
		zap.String("fitness_ordering", c.FitnessOrdering.String()),
		zap.Bool("par_fitness", c.ParFitness),
	)
}

// OnNewGeneration implements Reporter.
func (r *LogReporter[A]) OnNewGeneration(g genotype.Genotype[A], s *State, c *Config) {
	r.log.Debug("new generation",
		zap.Int("generation", s.CurrentGeneration),
		zap.Int("stale_generations", s.StaleGenerations),
		zap.Int("scale_index", s.CurrentScaleIndex),
	)
}

// OnNewBestChromosome implements Reporter.
func (r *LogReporter[A]) OnNewBestChromosome(g genotype.Genotype[A], s *State, c *Config) {
	r.log.Info("new best chromosome",
		zap.Int("generation", s.CurrentGeneration),
		zap.Int64("fitness_score", s.BestFitnessScore),
		zap.Int("scale_index", s.CurrentScaleIndex),
	)
}

// OnNewBestChromosomeEqualFitness implements Reporter.
func (r *LogReporter[A]) OnNewBestChromosomeEqualFitness(g genotype.Genotype[A], s *State, c *Config) {
	r.log.Debug("equal best chromosome",
		zap.Int("generation", s.CurrentGeneration),
		zap.Int64("fitness_score", s.BestFitnessScore),
	)
}

// OnFinish implements Reporter.
func (r *LogReporter[A]) OnFinish(g genotype.Genotype[A], s *State, c *Config) {
	fields := []zap.Field{
		zap.Int("generations", s.CurrentGeneration),
		zap.Int("best_generation", s.BestGeneration),
		zap.Int64("best_fitness_score", s.BestFitnessScore),
	}
	if c.FitnessCacheSize > 0 {
		fields = append(fields,
			zap.Uint64("cache_hits", s.CacheHits),
			zap.Uint64("cache_misses", s.CacheMisses),
		)
	}
	for phase, d := range s.Durations {
		fields = append(fields, zap.Duration("duration_"+string(phase), d))
	}
	r.log.Info("search finished", fields...)
}

// OnExit implements Reporter.
func (r *LogReporter[A]) OnExit(g genotype.Genotype[A], s *State, c *Config) {
	r.log.Debug("search exited", zap.Int("generation", s.CurrentGeneration))
}
