package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/teris-io/cli"

	"nand2tetris.dev/jackc/internal/driver"
)

var description = strings.ReplaceAll(`
jackc compiles one or more Jack source files (or directories containing them)
into sibling .vm files of stack-machine instructions, one class per file.
`, "\n", " ")

var jackCompiler = cli.New(description).
	WithArg(cli.NewArg("inputs", "The .jack source files or directories to compile").
		AsOptional().WithType(cli.TypeString)).
	WithOption(cli.NewOption("stdlib", "Reject calls to classes that are neither compiled in this invocation nor in the embedded standard library ABI").
		WithType(cli.TypeBool)).
	WithOption(cli.NewOption("debug", "Dump the token stream and symbol table of every compiled file").
		WithType(cli.TypeBool)).
	WithOption(cli.NewOption("keep-going", "Continue compiling remaining files after a failure").
		WithType(cli.TypeBool)).
	WithAction(handler)

func handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "ERROR: no input files or directories given, use --help")
		return -1
	}

	_, stdlib := options["stdlib"]
	_, debug := options["debug"]
	_, keepGoing := options["keep-going"]

	log := logrus.New()
	log.SetOutput(os.Stderr)

	d := driver.New(driver.Options{Stdlib: stdlib, Debug: debug, KeepGoing: keepGoing}, log)

	failed, err := d.Run(args)
	if err != nil {
		if failed == 0 {
			// Input discovery failed before any file was compiled.
			fmt.Fprintln(os.Stderr, err.Error())
			return 1
		}
		return failed
	}
	return 0
}

func main() { os.Exit(jackCompiler.Run(os.Args, os.Stdout)) }
