// Command accvm compiles and runs programs written in the tiny imperative
// source language this repository implements a toolchain for. Its flag
// surface and action plumbing are modeled on bbcdisasm's cmd/bbc-disasm
// driver: a single urfave/cli app with one default action rather than a
// subcommand tree, since accvm has one job (compile, and optionally run).
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"accvm/internal/codegen"
	"accvm/internal/isa"
	"accvm/internal/parser"
	"accvm/internal/semantic"
	"accvm/internal/vm"
)

func main() {
	app := cli.NewApp()
	app.Name = "accvm"
	app.Usage = "compile and run the tiny imperative accumulator-machine language"
	app.ArgsUsage = "source-file"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "output, o",
			Usage: "write compiled instructions to `FILE` instead of stdout",
		},
		cli.BoolFlag{
			Name:  "run, r",
			Usage: "execute the compiled program immediately",
		},
		cli.StringFlag{
			Name:  "input, i",
			Usage: "read SCAN values from `FILE` instead of stdin",
		},
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "print instruction counts and step count after running",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "run interactively, one instruction at a time",
		},
	}
	app.Action = runAction

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.NewExitError("expected a source file argument", 1)
	}
	sourcePath := c.Args().First()

	prog, err := parser.ParseFile(sourcePath)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("parse error: %s", err), 2)
	}

	sem := semantic.Analyze(prog)
	if len(sem.Errors) > 0 {
		for _, msg := range sem.Errors {
			fmt.Fprintln(os.Stderr, msg)
		}
		return cli.NewExitError("semantic analysis failed", 3)
	}

	program, err := codegen.Generate(prog, sem)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("code generation failed: %s", err), 4)
	}

	if err := writeOutput(c, program.Code); err != nil {
		return cli.NewExitError(err.Error(), 5)
	}

	if !c.Bool("run") && !c.Bool("debug") {
		return nil
	}

	input := os.Stdin
	if path := c.String("input"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("could not open input file: %s", err), 6)
		}
		defer f.Close()
		input = f
	}

	machine := vm.New(program.Code, vm.NewConsoleIO(input, os.Stdout))

	if c.Bool("debug") {
		if err := machine.RunDebug(os.Stdin, os.Stdout); err != nil {
			return cli.NewExitError(fmt.Sprintf("runtime error: %s", err), 7)
		}
		return nil
	}

	if err := machine.Run(); err != nil {
		return cli.NewExitError(fmt.Sprintf("runtime error: %s", err), 7)
	}

	if c.Bool("verbose") {
		fmt.Fprintf(os.Stderr, "instructions_generated=%d instructions_executed=%d steps=%d\n",
			len(program.Code), machine.Instructions, machine.Steps)
	}
	return nil
}

func writeOutput(c *cli.Context, code []isa.Instruction) error {
	out := os.Stdout
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("could not create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return isa.Encode(out, code)
}
