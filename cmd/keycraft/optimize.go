package main

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/MaxHalford/eaopt"
	"github.com/google/uuid"
	kc "github.com/rbscholtus/klayout/internal/keycraft"
	"github.com/urfave/cli/v2"
)

var optimizeSACommand = &cli.Command{
	Name:      "optimize-sa",
	Usage:     "search for a low-cost layout using simulated annealing",
	ArgsUsage: "[initial-permutation]",
	Flags: flagsSlice(
		"keyboard", "template", "params", "corpus", "weights", "weights-file",
		"seed", "generations", "log-file", "accept-worse",
	),
	Action: runOptimizeSA,
}

// acceptFunc returns a simulated-annealing acceptance function for the
// named policy: the probability of moving to a worse state at generation g
// of ng, given energies e0 (current) and e1 (candidate).
func acceptFunc(policy string) (func(g, ng uint, e0, e1 float64) float64, error) {
	switch policy {
	case "always":
		return func(g, ng uint, e0, e1 float64) float64 { return 1.0 }, nil
	case "never":
		return func(g, ng uint, e0, e1 float64) float64 { return 0.0 }, nil
	case "drop-slow":
		return func(g, ng uint, e0, e1 float64) float64 {
			t := 1.0 - float64(g)/float64(ng)
			return (math.Cos(t*math.Pi) + 1.0) / 2.0
		}, nil
	case "linear":
		return func(g, ng uint, e0, e1 float64) float64 {
			return 1.0 - float64(g)/float64(ng)
		}, nil
	case "drop-fast":
		return func(g, ng uint, e0, e1 float64) float64 {
			t := 1.0 - float64(g)/float64(ng)
			return math.Exp(-3.0 * (1 - t))
		}, nil
	default:
		return nil, fmt.Errorf("unknown accept-worse policy %q", policy)
	}
}

func runOptimizeSA(c *cli.Context) error {
	if c.NArg() > 1 {
		return fmt.Errorf("optimize-sa takes at most one initial-permutation argument")
	}

	accept, err := acceptFunc(c.String("accept-worse"))
	if err != nil {
		return err
	}

	eng, err := loadEngine(c)
	if err != nil {
		return err
	}

	initial := c.Args().First()
	if initial == "" {
		initial = string(eng.generator.PermutableKeys())
	}
	initialLayout, err := eng.generator.Generate(initial)
	if err != nil {
		return err
	}
	initialChars := []rune(initial)

	var fileWriter io.Writer
	if path := c.String("log-file"); path != "" {
		logFile, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("could not create log file %q: %w", path, err)
		}
		defer logFile.Close()
		fileWriter = logFile
	}
	logger := kc.NewEvalLogger(os.Stdout, fileWriter)

	cache := kc.NewCache[float64]()
	seed := c.Int64("seed")
	generations := uint(c.Uint("generations"))
	runID := uuid.New().String()

	logger.LogStart(runID, kc.OptimizerLogParams{
		Strategy:      "simulated-annealing",
		MaxIterations: int(generations),
		Seed:          seed,
	}, initialLayout, len(initialChars))

	initialCost := totalCost(eng.evaluator.EvaluateLayout(initialLayout))
	logger.LogInitialCost(initialCost)

	cfg := eaopt.NewDefaultGAConfig()
	cfg.NGenerations = generations
	cfg.PopSize = 1
	cfg.Model = eaopt.ModSimulatedAnnealing{Accept: accept}

	start := time.Now()
	best := math.MaxFloat64
	cfg.Callback = func(ga *eaopt.GA) {
		fit := ga.HallOfFame[0].Fitness
		if fit >= best {
			return
		}
		prevBest := best
		best = fit
		g := ga.HallOfFame[0].Genome.(*permutationGenome)
		layout, err := eng.generator.Generate(string(g.chars))
		if err != nil {
			return
		}
		logger.LogImprovement(int(ga.Generations), fit, prevBest, layout, time.Since(start))
	}

	ga, err := cfg.NewGA()
	if err != nil {
		return err
	}

	newGenome := func(rng *rand.Rand) eaopt.Genome {
		chars := make([]rune, len(initialChars))
		copy(chars, initialChars)
		return &permutationGenome{chars: chars, generator: eng.generator, evaluator: eng.evaluator, cache: cache}
	}

	if err := ga.Minimize(newGenome); err != nil {
		return err
	}

	hof := ga.HallOfFame[0]
	bestGenome := hof.Genome.(*permutationGenome)
	bestLayout, err := eng.generator.Generate(string(bestGenome.chars))
	if err != nil {
		return err
	}

	logger.LogEnd(hof.Fitness, int(ga.Generations), time.Since(start), bestLayout)
	logger.LogCacheStats(cache.Stats())

	renderResults(os.Stdout, eng.evaluator.EvaluateLayout(bestLayout))

	return nil
}

var optimizeGeneticCommand = &cli.Command{
	Name:      "optimize-genetic",
	Usage:     "search for a low-cost layout using a genetic algorithm",
	ArgsUsage: "[initial-permutation]",
	Flags: flagsSlice(
		"keyboard", "template", "params", "corpus", "weights", "weights-file",
		"seed", "generations", "population", "log-file",
	),
	Action: runOptimizeGenetic,
}

// permutationGenome is the eaopt.Genome a genetic run mutates: a candidate
// ordering of a layout's permutable keys, scored through a shared Evaluator
// and Cache.
type permutationGenome struct {
	chars     []rune
	generator *kc.LayoutGenerator
	evaluator *kc.Evaluator
	cache     *kc.Cache[float64]
}

// Evaluate scores the genome's permutation, memoized by its permutation
// string since independent genomes can converge on the same ordering.
func (g *permutationGenome) Evaluate() (float64, error) {
	key := string(g.chars)
	cost := g.cache.GetOrInsertWith(key, func() float64 {
		layout, err := g.generator.Generate(key)
		if err != nil {
			return math.Inf(1)
		}
		return totalCost(g.evaluator.EvaluateLayout(layout))
	})
	return cost, nil
}

// Mutate swaps two randomly chosen keys in the permutation.
func (g *permutationGenome) Mutate(rng *rand.Rand) {
	if len(g.chars) < 2 {
		return
	}
	i := rng.Intn(len(g.chars))
	j := rng.Intn(len(g.chars))
	for j == i {
		j = rng.Intn(len(g.chars))
	}
	g.chars[i], g.chars[j] = g.chars[j], g.chars[i]
}

// Crossover is a no-op: this genome relies on mutation-only search, same as
// the project's other optimizer strategies.
func (g *permutationGenome) Crossover(_ eaopt.Genome, _ *rand.Rand) {}

// Clone returns an independent copy sharing the generator, evaluator and
// cache, all of which are read-only from a genome's perspective.
func (g *permutationGenome) Clone() eaopt.Genome {
	cc := &permutationGenome{
		chars:     make([]rune, len(g.chars)),
		generator: g.generator,
		evaluator: g.evaluator,
		cache:     g.cache,
	}
	copy(cc.chars, g.chars)
	return cc
}

func runOptimizeGenetic(c *cli.Context) error {
	if c.NArg() > 1 {
		return fmt.Errorf("optimize-genetic takes at most one initial-permutation argument")
	}

	eng, err := loadEngine(c)
	if err != nil {
		return err
	}

	initial := c.Args().First()
	if initial == "" {
		initial = string(eng.generator.PermutableKeys())
	}
	initialLayout, err := eng.generator.Generate(initial)
	if err != nil {
		return err
	}
	initialChars := []rune(initial)

	var fileWriter io.Writer
	if path := c.String("log-file"); path != "" {
		logFile, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("could not create log file %q: %w", path, err)
		}
		defer logFile.Close()
		fileWriter = logFile
	}
	logger := kc.NewEvalLogger(os.Stdout, fileWriter)

	cache := kc.NewCache[float64]()
	seed := c.Int64("seed")
	generations := uint(c.Uint("generations"))
	population := uint(c.Uint("population"))
	runID := uuid.New().String()

	logger.LogStart(runID, kc.OptimizerLogParams{
		Strategy:       "genetic",
		MaxIterations:  int(generations),
		Seed:           seed,
		PopulationSize: int(population),
	}, initialLayout, len(initialChars))

	initialCost := totalCost(eng.evaluator.EvaluateLayout(initialLayout))
	logger.LogInitialCost(initialCost)

	cfg := eaopt.NewDefaultGAConfig()
	cfg.NGenerations = generations
	cfg.PopSize = population
	cfg.Model = eaopt.ModGenerational{
		Selector: eaopt.SelTournament{NContestants: 3},
		MutRate:  1.0,
	}

	start := time.Now()
	best := math.MaxFloat64
	cfg.Callback = func(ga *eaopt.GA) {
		fit := ga.HallOfFame[0].Fitness
		if fit >= best {
			return
		}
		prevBest := best
		best = fit
		g := ga.HallOfFame[0].Genome.(*permutationGenome)
		layout, err := eng.generator.Generate(string(g.chars))
		if err != nil {
			return
		}
		logger.LogImprovement(int(ga.Generations), fit, prevBest, layout, time.Since(start))
	}

	ga, err := cfg.NewGA()
	if err != nil {
		return err
	}

	newGenome := func(rng *rand.Rand) eaopt.Genome {
		chars := make([]rune, len(initialChars))
		copy(chars, initialChars)
		rng.Shuffle(len(chars), func(i, j int) { chars[i], chars[j] = chars[j], chars[i] })
		return &permutationGenome{chars: chars, generator: eng.generator, evaluator: eng.evaluator, cache: cache}
	}

	if err := ga.Minimize(newGenome); err != nil {
		return err
	}

	hof := ga.HallOfFame[0]
	bestGenome := hof.Genome.(*permutationGenome)
	bestLayout, err := eng.generator.Generate(string(bestGenome.chars))
	if err != nil {
		return err
	}

	logger.LogEnd(hof.Fitness, int(ga.Generations), time.Since(start), bestLayout)
	logger.LogCacheStats(cache.Stats())

	renderResults(os.Stdout, eng.evaluator.EvaluateLayout(bestLayout))

	return nil
}
