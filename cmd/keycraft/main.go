// Package main provides the CLI entrypoint for the keycraft command-line
// tool: evaluating a layout against a corpus, rendering a layout, and
// running an optimizer over a layout's free keys.
//
// evaluate.go implements the "evaluate" command: load a keyboard, a layout
// template and an evaluation parameters file, then score a permutation.
//
// render.go implements the "render" command: print a layout's base layer.
//
// optimize.go implements the "optimize" commands: run a genetic or a
// simulated-annealing search over a layout's permutable keys using eaopt,
// logging progress via EvalLogger.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Data directories used by the CLI (relative to repository root).
const (
	configDir = "data/config/"
	corpusDir = "data/corpus/"
)

var appFlagsMap = map[string]cli.Flag{
	"keyboard": &cli.StringFlag{
		Name:    "keyboard",
		Aliases: []string{"k"},
		Usage:   "keyboard geometry file",
		Value:   "keyboard.yaml",
	},
	"template": &cli.StringFlag{
		Name:    "template",
		Aliases: []string{"t"},
		Usage:   "base layout template file",
		Value:   "template.yaml",
	},
	"params": &cli.StringFlag{
		Name:    "params",
		Aliases: []string{"p"},
		Usage:   "evaluation parameters file",
		Value:   "params.yaml",
	},
	"corpus": &cli.StringFlag{
		Name:    "corpus",
		Aliases: []string{"c"},
		Usage:   "ngram frequency files prefix (expects <prefix>.1,2,3grams)",
		Value:   "default",
	},
	"weights": &cli.StringFlag{
		Name:    "weights",
		Aliases: []string{"w"},
		Usage:   "metric weight overrides, eg: key_cost=2.0,hand_disbalance=5.0",
	},
	"weights-file": &cli.StringFlag{
		Name:  "weights-file",
		Usage: "file containing metric weight overrides",
	},
	"seed": &cli.Int64Flag{
		Name:  "seed",
		Usage: "random seed for the optimizer",
		Value: 1,
	},
	"generations": &cli.UintFlag{
		Name:    "generations",
		Aliases: []string{"g"},
		Usage:   "number of generations to run",
		Value:   100,
	},
	"population": &cli.UintFlag{
		Name:  "population",
		Usage: "genetic population size",
		Value: 30,
	},
	"log-file": &cli.StringFlag{
		Name:  "log-file",
		Usage: "JSONL log output file (optional)",
	},
	"accept-worse": &cli.StringFlag{
		Name:  "accept-worse",
		Usage: "simulated-annealing acceptance policy: always, never, drop-slow, linear, drop-fast",
		Value: "drop-slow",
	},
}

func flagsSlice(keys ...string) []cli.Flag {
	flags := make([]cli.Flag, 0, len(keys))
	for _, k := range keys {
		if f, ok := appFlagsMap[k]; ok {
			flags = append(flags, f)
		}
	}
	return flags
}

func main() {
	app := &cli.App{
		Name:  "keycraft",
		Usage: "evaluate and optimize keyboard layouts",
		Commands: []*cli.Command{
			evaluateCommand,
			renderCommand,
			rankCommand,
			optimizeGeneticCommand,
			optimizeSACommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
