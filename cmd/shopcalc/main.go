// Command shopcalc prices a marketplace listing from the terminal.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Simplici0/shopcalc/internal/export"
	"github.com/Simplici0/shopcalc/internal/pricing"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("shopcalc", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "JSON config file; flags override its values")
	strategyName := fs.String("strategy", "", "solver strategy: closed_form or bisection")
	csvPath := fs.String("csv", "", "also write the breakdown as CSV to this path")
	summary := fs.Bool("summary", false, "print the short share summary instead of the table")
	asJSON := fs.Bool("json", false, "print the solution as JSON")

	var edits overrides
	registerConfigFlags(fs, &edits)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg := pricing.DefaultConfig()
	if *configPath != "" {
		loaded, err := loadConfigFile(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "shopcalc: %v\n", err)
			return 1
		}
		cfg = loaded
	}
	for _, edit := range edits {
		edit(&cfg)
	}

	strategy, err := pricing.ParseStrategy(*strategyName)
	if err != nil {
		fmt.Fprintf(stderr, "shopcalc: %v\n", err)
		return 2
	}
	if err := pricing.Validate(cfg); err != nil {
		fmt.Fprintf(stderr, "shopcalc: invalid config:\n%v\n", err)
		return 2
	}

	sol := pricing.Calculate(cfg, strategy)

	if *csvPath != "" {
		if err := export.WriteCSVFile(*csvPath, sol.Result); err != nil {
			fmt.Fprintf(stderr, "shopcalc: %v\n", err)
			return 1
		}
	}

	switch {
	case *asJSON:
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sol); err != nil {
			fmt.Fprintf(stderr, "shopcalc: encode solution: %v\n", err)
			return 1
		}
	case *summary:
		fmt.Fprintln(stdout, export.Summary(cfg.ProductName, sol.Result))
	default:
		fmt.Fprintln(stdout, render(cfg, sol))
	}
	return 0
}
