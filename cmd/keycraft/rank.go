package main

import (
	"fmt"
	"os"
	"runtime"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	kc "github.com/rbscholtus/klayout/internal/keycraft"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var rankCommand = &cli.Command{
	Name:      "rank",
	Usage:     "evaluate several layout permutations concurrently and rank them by total cost",
	ArgsUsage: "<permutation1> <permutation2> ...",
	Flags:     flagsSlice("keyboard", "template", "params", "corpus", "weights", "weights-file"),
	Action:    runRank,
}

type rankedLayout struct {
	Permutation string
	Cost        float64
	err         error
}

func runRank(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("rank requires at least one permutation argument")
	}

	eng, err := loadEngine(c)
	if err != nil {
		return err
	}

	perms := c.Args().Slice()
	ranked := make([]rankedLayout, len(perms))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, perm := range perms {
		i, perm := i, perm
		g.Go(func() error {
			layout, err := eng.generator.Generate(perm)
			if err != nil {
				ranked[i] = rankedLayout{Permutation: perm, err: err}
				return nil
			}
			cost := totalCost(eng.evaluator.EvaluateLayout(layout))
			ranked[i] = rankedLayout{Permutation: perm, Cost: cost}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].err != nil {
			return false
		}
		if ranked[j].err != nil {
			return true
		}
		return ranked[i].Cost < ranked[j].Cost
	})

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Rank", "Permutation", "Total Cost"})
	for i, r := range ranked {
		if r.err != nil {
			t.AppendRow(table.Row{i + 1, r.Permutation, fmt.Sprintf("error: %v", r.err)})
			continue
		}
		t.AppendRow(table.Row{i + 1, r.Permutation, fmt.Sprintf("%.4f", r.Cost)})
	}
	t.Render()

	return nil
}
