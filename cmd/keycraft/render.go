package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

var renderCommand = &cli.Command{
	Name:      "render",
	Usage:     "print a layout permutation's base layer",
	ArgsUsage: "<permutation>",
	Flags:     flagsSlice("keyboard", "template"),
	Action:    runRender,
}

func runRender(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("render requires exactly one permutation argument")
	}

	generator, err := loadGenerator(c)
	if err != nil {
		return err
	}

	layout, err := generator.Generate(c.Args().First())
	if err != nil {
		return err
	}

	fmt.Println(layout)
	return nil
}
