package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tomhoffer/evolvium/internal/allele"
	"github.com/tomhoffer/evolvium/internal/crossover"
	"github.com/tomhoffer/evolvium/internal/fitness"
	"github.com/tomhoffer/evolvium/internal/genotype"
	"github.com/tomhoffer/evolvium/internal/mutate"
	"github.com/tomhoffer/evolvium/internal/selection"
	"github.com/tomhoffer/evolvium/internal/strategy"
	"github.com/tomhoffer/evolvium/internal/strategy/evolve"
	"github.com/tomhoffer/evolvium/internal/strategy/hillclimb"
	"github.com/tomhoffer/evolvium/internal/strategy/permutate"
)

const (
	genesSize            = 32
	targetPopulationSize = 100
	maxStaleGenerations  = 50
	tournamentSize       = 4
	mutationProbability  = 0.2
	selectionRate        = 0.5
)

func runBinaryEvolve(ctx context.Context, log *zap.Logger) error {
	g, err := genotype.NewBinary(genotype.BinaryConfig{
		GenesSize:    genesSize,
		GenesHashing: true,
	})
	if err != nil {
		return err
	}
	mutator, err := mutate.NewSingleGene[bool](mutationProbability)
	if err != nil {
		return err
	}
	xover, err := crossover.NewUniform[bool](selectionRate)
	if err != nil {
		return err
	}
	selector, err := selection.NewTournament[bool](tournamentSize)
	if err != nil {
		return err
	}
	target := int64(genesSize)
	e, err := evolve.New[bool](
		g,
		fitness.CountTrue{},
		mutator,
		xover,
		selector,
		nil,
		strategy.Config{
			TargetPopulationSize: targetPopulationSize,
			MaxStaleGenerations:  maxStaleGenerations,
			TargetFitnessScore:   &target,
			FitnessOrdering:      fitness.Maximize,
			FitnessCacheSize:     1000,
			ParFitness:           true,
		},
		strategy.NewLogReporter[bool](log),
	)
	if err != nil {
		return err
	}
	if err := e.Run(ctx); err != nil {
		return err
	}
	score, _ := e.BestFitnessScore()
	fmt.Printf("evolve (count true): best score %d after %d generations\n", score, e.State().CurrentGeneration)
	return nil
}

func runRangeHillClimb(ctx context.Context, log *zap.Logger) error {
	g, err := genotype.NewRange[float64](genotype.RangeConfig[float64]{
		GenesSize:    8,
		AlleleRange:  allele.NewInterval(0.0, 1.0),
		MutationType: genotype.MutationScaled,
		AlleleMutationScaledRanges: []allele.Interval[float64]{
			allele.NewInterval(-0.5, 0.5),
			allele.NewInterval(-0.05, 0.05),
			allele.NewInterval(-0.005, 0.005),
		},
		GenesHashing:   true,
		Storage:        genotype.StorageStaticMatrix,
		MatrixCapacity: 64,
	})
	if err != nil {
		return err
	}
	h, err := hillclimb.New[float64](
		g,
		fitness.SumGenes[float64]{Precision: 1e-3},
		strategy.Config{
			MaxStaleGenerations: 10,
			FitnessOrdering:     fitness.Minimize,
			FitnessCacheSize:    1000,
		},
		strategy.NewLogReporter[float64](log),
	)
	if err != nil {
		return err
	}
	if err := h.Run(ctx); err != nil {
		return err
	}
	score, _ := h.BestFitnessScore()
	fmt.Printf("hill climb (minimize sum): best score %d, genes %v\n", score, h.BestGenes())
	return nil
}

func runListPermutate(ctx context.Context, log *zap.Logger) error {
	g, err := genotype.NewList[int](genotype.ListConfig[int]{
		GenesSize:  4,
		AlleleList: []int{0, 1, 2, 3, 4},
	})
	if err != nil {
		return err
	}
	p, err := permutate.New[int](
		g,
		fitness.SumGenes[int]{},
		strategy.Config{FitnessOrdering: fitness.Maximize},
		strategy.NewLogReporter[int](log),
	)
	if err != nil {
		return err
	}
	p.ShowProgress = true
	if err := p.Run(ctx); err != nil {
		return err
	}
	score, _ := p.BestFitnessScore()
	fmt.Printf("permutate (maximize sum): best score %d over %d genomes\n", score, p.State().CurrentGeneration)
	return nil
}

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	defer log.Sync()

	ctx := context.Background()
	if err := runBinaryEvolve(ctx, log); err != nil {
		panic(fmt.Sprintf("binary evolve failed: %v", err))
	}
	if err := runRangeHillClimb(ctx, log); err != nil {
		panic(fmt.Sprintf("range hill climb failed: %v", err))
	}
	if err := runListPermutate(ctx, log); err != nil {
		panic(fmt.Sprintf("list permutate failed: %v", err))
	}
}
