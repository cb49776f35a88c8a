package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	kc "github.com/rbscholtus/klayout/internal/keycraft"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

// engine bundles the pieces a command needs to turn a permutation string
// into a scored layout.
type engine struct {
	generator *kc.LayoutGenerator
	evaluator *kc.Evaluator
}

// loadGenerator reads the keyboard and layout template named by c's flags,
// without touching the ngram corpus or evaluation parameters.
func loadGenerator(c *cli.Context) (*kc.LayoutGenerator, error) {
	kbCfg, err := kc.LoadKeyboardYAML(filepath.Join(configDir, c.String("keyboard")))
	if err != nil {
		return nil, err
	}
	kb, err := kbCfg.Build()
	if err != nil {
		return nil, err
	}

	layoutCfg, err := kc.LoadBaseLayoutYAML(filepath.Join(configDir, c.String("template")))
	if err != nil {
		return nil, err
	}
	base, err := layoutCfg.Build(kb)
	if err != nil {
		return nil, err
	}

	if base.GroupedLayers > 0 {
		grouped, err := kc.NewGroupedLayoutGenerator(base)
		if err != nil {
			return nil, err
		}
		return grouped.LayoutGenerator, nil
	}
	return kc.NewLayoutGenerator(base)
}

// loadEngine reads the keyboard, layout template, ngram corpus, and
// evaluation parameters named by c's flags, and wires them into an engine.
func loadEngine(c *cli.Context) (*engine, error) {
	generator, err := loadGenerator(c)
	if err != nil {
		return nil, err
	}

	unigrams, bigrams, trigrams, err := loadNgrams(c.String("corpus"))
	if err != nil {
		return nil, err
	}

	paramsCfg, err := kc.LoadEvaluationParametersYAML(filepath.Join(configDir, c.String("params")))
	if err != nil {
		return nil, err
	}

	overrides, err := kc.NewWeightsFromParams(c.String("weights-file"), c.String("weights"), kc.KnownMetricNames())
	if err != nil {
		return nil, err
	}

	evaluator, err := kc.BuildEvaluator(paramsCfg, unigrams, bigrams, trigrams, overrides)
	if err != nil {
		return nil, err
	}

	return &engine{generator: generator, evaluator: evaluator}, nil
}

// loadNgrams reads <prefix>.1grams/.2grams/.3grams from corpusDir
// concurrently, bounded by an errgroup so one bad file fails the whole load.
func loadNgrams(prefix string) (*kc.Ngrams[kc.Unigram], *kc.Ngrams[kc.Bigram], *kc.Ngrams[kc.Trigram], error) {
	var unigrams *kc.Ngrams[kc.Unigram]
	var bigrams *kc.Ngrams[kc.Bigram]
	var trigrams *kc.Ngrams[kc.Trigram]

	var g errgroup.Group
	g.Go(func() error {
		data, err := readCorpusFile(prefix, "1grams")
		if err != nil {
			return err
		}
		unigrams, err = kc.UnigramsFromFrequenciesText(data)
		return err
	})
	g.Go(func() error {
		data, err := readCorpusFile(prefix, "2grams")
		if err != nil {
			return err
		}
		bigrams, err = kc.BigramsFromFrequenciesText(data)
		return err
	})
	g.Go(func() error {
		data, err := readCorpusFile(prefix, "3grams")
		if err != nil {
			return err
		}
		trigrams, err = kc.TrigramsFromFrequenciesText(data)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return unigrams, bigrams, trigrams, nil
}

// renderResults prints a per-metric cost breakdown across all four families,
// with a grand total footer.
func renderResults(w io.Writer, results []kc.MetricResults) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Family", "Metric", "Cost", "Weighted"})

	var total float64
	for _, r := range results {
		for _, mc := range r.MetricCosts {
			t.AppendRow(table.Row{r.MetricType, mc.Name, fmt.Sprintf("%.4f", mc.Cost), fmt.Sprintf("%.4f", mc.Weight*mc.Cost)})
		}
		total += r.TotalCost()
	}
	t.AppendFooter(table.Row{"", "", "Total", fmt.Sprintf("%.4f", total)})
	t.Render()
}

// totalCost sums a layout's four family totals into a single scalar, for
// use as a genetic-algorithm fitness value.
func totalCost(results []kc.MetricResults) float64 {
	var total float64
	for _, r := range results {
		total += r.TotalCost()
	}
	return total
}

func readCorpusFile(prefix, suffix string) (string, error) {
	path := filepath.Join(corpusDir, fmt.Sprintf("%s.%s", prefix, suffix))
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("could not read corpus file %q: %w", path, err)
	}
	return string(data), nil
}
