package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var evaluateCommand = &cli.Command{
	Name:      "evaluate",
	Usage:     "score a layout permutation against a corpus",
	ArgsUsage: "<permutation>",
	Flags:     flagsSlice("keyboard", "template", "params", "corpus", "weights", "weights-file"),
	Action:    runEvaluate,
}

func runEvaluate(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("evaluate requires exactly one permutation argument")
	}

	eng, err := loadEngine(c)
	if err != nil {
		return err
	}

	layout, err := eng.generator.Generate(c.Args().First())
	if err != nil {
		return err
	}

	results := eng.evaluator.EvaluateLayout(layout)
	renderResults(os.Stdout, results)

	return nil
}
