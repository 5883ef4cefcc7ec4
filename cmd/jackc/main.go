// Command jackc compiles one Jack source file or a directory of them into Hack VM .vm files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	jackc "jackc/pkg"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	flags := pflag.NewFlagSet("jackc", pflag.ContinueOnError)
	outDir := flags.StringP("out", "o", "", "output directory (default: alongside the input)")
	jackOS := flags.String("jackos", "JackOS", "directory of JackOS standard-library sources to ingest")
	verbose := flags.BoolP("verbose", "v", false, "log per-phase compiler progress")
	warnAsError := flags.BoolP("warnings-as-errors", "W", false, "treat every resolver warning as a fatal error")

	if err := flags.Parse(argv); err != nil {
		return 2
	}

	if flags.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: jackc [flags] <file.jack|directory>")
		return 2
	}

	cfg := jackc.Config{
		Input:           flags.Arg(0),
		OutputDir:       *outDir,
		JackOSDir:       *jackOS,
		Verbose:         *verbose,
		WarningsAsError: *warnAsError,
	}

	sess := jackc.NewSession(cfg, os.Stderr)
	result, err := sess.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	for _, w := range result.Warnings {
		fmt.Fprintln(os.Stderr, w)
	}

	return 0
}
