// Package strategy holds the state, configuration and reporter protocol
// shared by the Evolve, HillClimb and Permutate drivers.
package strategy

import (
	"fmt"
	"time"

	"github.com/tomhoffer/evolvium/internal/fitness"
	"github.com/tomhoffer/evolvium/internal/genotype"
)

// Phase labels the timing accumulators on the strategy state.
type Phase string

const (
	PhaseExtension Phase = "extension"
	PhaseCrossover Phase = "crossover"
	PhaseMutate    Phase = "mutate"
	PhaseFitness   Phase = "fitness"
	PhaseSelect    Phase = "select"
	PhaseSetup     Phase = "setup"
)

// State is the mutable run bookkeeping shared by all strategies. The best
// genes themselves are held on the genotype's best-genes buffer.
type State struct {
	CurrentGeneration   int
	StaleGenerations    int
	CurrentScaleIndex   int
	BestGeneration      int
	BestFitnessScore    int64
	HasBestFitnessScore bool

	// CacheHits and CacheMisses snapshot the fitness cache counters for
	// reporter hooks; zero when no cache is configured.
	CacheHits   uint64
	CacheMisses uint64

	// Durations accumulates wall-clock time per phase.
	Durations map[Phase]time.Duration
}

// NewState builds an empty state.
func NewState() *State {
	return &State{Durations: make(map[Phase]time.Duration)}
}

// AddDuration accumulates elapsed wall-clock time for a phase.
func (s *State) AddDuration(phase Phase, d time.Duration) {
	s.Durations[phase] += d
}

// UpdateBest records a new incumbent score.
func (s *State) UpdateBest(score int64) {
	s.BestFitnessScore = score
	s.HasBestFitnessScore = true
	s.BestGeneration = s.CurrentGeneration
	s.StaleGenerations = 0
}

// Config carries the strategy options common to all drivers. Zero values
// mean "not configured" for the optional limits.
type Config struct {
	// TargetPopulationSize is the population size selection returns to
	// each generation.
	TargetPopulationSize int
	// MaxStaleGenerations ends the run after this many generations
	// without strict improvement (once the finest scale is active, for
	// scaled genotypes).
	MaxStaleGenerations int
	// MaxGenerations ends the run unconditionally.
	MaxGenerations int
	// MaxChromosomeAge culls chromosomes older than this at the start of
	// each generation.
	MaxChromosomeAge int
	// TargetFitnessScore ends the run once the incumbent reaches it
	// under the ordering.
	TargetFitnessScore *int64
	// ValidFitnessScore blocks every ending condition until the
	// incumbent reaches it under the ordering.
	ValidFitnessScore *int64
	// FitnessOrdering decides whether higher or lower scores win.
	FitnessOrdering fitness.Ordering
	// FitnessCacheSize enables the LRU fitness cache when positive.
	// Requires genes hashing on the genotype.
	FitnessCacheSize int
	// ParFitness evaluates fitness on a bounded worker pool. Pending
	// chromosomes are split into one contiguous chunk per worker; chunks are
	// not rebalanced between workers.
	ParFitness bool
	// ReplaceOnEqualFitness lets an equal-scoring genome replace the
	// incumbent's genes, and randomizes neighbor tie-breaks.
	ReplaceOnEqualFitness bool
	// RNGSeed seeds the strategy's random source; zero draws a seed from
	// the clock.
	RNGSeed int64
}

// HasEndingCondition reports whether at least one termination condition is
// configured. A strategy without one would spin forever.
func (c *Config) HasEndingCondition() bool {
	return c.MaxStaleGenerations > 0 || c.MaxGenerations > 0 || c.TargetFitnessScore != nil
}

// ValidGuardSatisfied reports whether the valid-fitness guard allows
// termination.
func (c *Config) ValidGuardSatisfied(s *State) bool {
	if c.ValidFitnessScore == nil {
		return true
	}
	return s.HasBestFitnessScore && fitness.Satisfies(c.FitnessOrdering, s.BestFitnessScore, *c.ValidFitnessScore)
}

// IsFinished evaluates the shared termination conditions. maxScaleIndex is
// the genotype's finest scale (-1 when unscaled); staleness only terminates
// once the finest scale is active.
func (c *Config) IsFinished(s *State, maxScaleIndex int) bool {
	if !c.ValidGuardSatisfied(s) {
		return false
	}
	if c.MaxStaleGenerations > 0 &&
		s.StaleGenerations >= c.MaxStaleGenerations &&
		(maxScaleIndex < 0 || s.CurrentScaleIndex >= maxScaleIndex) {
		return true
	}
	if c.MaxGenerations > 0 && s.CurrentGeneration >= c.MaxGenerations {
		return true
	}
	if c.TargetFitnessScore != nil && s.HasBestFitnessScore &&
		fitness.Satisfies(c.FitnessOrdering, s.BestFitnessScore, *c.TargetFitnessScore) {
		return true
	}
	return false
}

// Validate checks the cross-field configuration invariants shared by all
// strategies.
func (c *Config) Validate() error {
	if !c.HasEndingCondition() {
		return genotype.NewConfigError("strategy requires an ending condition (max stale generations, max generations or target fitness score)", nil)
	}
	if c.FitnessCacheSize < 0 {
		return genotype.NewConfigError(fmt.Sprintf("fitness cache size cannot be negative, got %d", c.FitnessCacheSize), nil)
	}
	return nil
}

// Reporter receives lifecycle hooks from a running strategy. Implementations
// may log, collect metrics or accumulate durations; they must not mutate
// state.
type Reporter[A comparable] interface {
	OnStart(g genotype.Genotype[A], s *State, c *Config)
	OnNewGeneration(g genotype.Genotype[A], s *State, c *Config)
	OnNewBestChromosome(g genotype.Genotype[A], s *State, c *Config)
	OnNewBestChromosomeEqualFitness(g genotype.Genotype[A], s *State, c *Config)
	OnFinish(g genotype.Genotype[A], s *State, c *Config)
	OnExit(g genotype.Genotype[A], s *State, c *Config)
}

// NoopReporter ignores every hook. The default for all strategies.
type NoopReporter[A comparable] struct{}

func (NoopReporter[A]) OnStart(g genotype.Genotype[A], s *State, c *Config)         {}
func (NoopReporter[A]) OnNewGeneration(g genotype.Genotype[A], s *State, c *Config) {}
func (NoopReporter[A]) OnNewBestChromosome(g genotype.Genotype[A], s *State, c *Config) {
}
func (NoopReporter[A]) OnNewBestChromosomeEqualFitness(g genotype.Genotype[A], s *State, c *Config) {
}
func (NoopReporter[A]) OnFinish(g genotype.Genotype[A], s *State, c *Config) {}
func (NoopReporter[A]) OnExit(g genotype.Genotype[A], s *State, c *Config)   {}
