// Package main provides a demonstration driver for the Auriga existential
// specializer. It builds sample AIR modules, runs the transform per a YAML
// plan (the candidate-selection output), and prints before/after
// disassembly. With -watch the plan file is re-applied on every change.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/mattn/go-isatty"

	"github.com/auriga-lang/auriga/internal/air"
	"github.com/auriga-lang/auriga/internal/cli"
	"github.com/auriga-lang/auriga/internal/optimizer/existential"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version information")
		jsonOutput  = flag.Bool("json", false, "print version info as JSON")
		planPath    = flag.String("plan", "", "YAML transform plan (defaults to a built-in demo plan)")
		watch       = flag.Bool("watch", false, "re-run the plan whenever the plan file changes")
		noColor     = flag.Bool("no-color", false, "disable colored output")
	)
	flag.Parse()

	if *showVersion {
		cli.PrintVersion("auriga-opt", *jsonOutput)
		return
	}

	color := !*noColor && isatty.IsTerminal(os.Stdout.Fd())

	if *watch && *planPath == "" {
		fmt.Fprintln(os.Stderr, "auriga-opt: -watch requires -plan")
		os.Exit(2)
	}

	if err := runOnce(*planPath, color); err != nil {
		fmt.Fprintf(os.Stderr, "auriga-opt: %v\n", err)
		os.Exit(1)
	}

	if *watch {
		if err := watchPlan(*planPath, color); err != nil {
			fmt.Fprintf(os.Stderr, "auriga-opt: %v\n", err)
			os.Exit(1)
		}
	}
}

func loadPlan(planPath string) (*existential.Plan, error) {
	if planPath == "" {
		return existential.ParsePlan([]byte(defaultPlan))
	}
	return existential.LoadPlan(planPath)
}

// runOnce builds a fresh sample module and applies the plan to it.
func runOnce(planPath string, color bool) error {
	plan, err := loadPlan(planPath)
	if err != nil {
		return err
	}

	module := buildSampleModule()
	for _, entry := range plan.Transforms {
		fn := module.LookupFunction(entry.Function)
		if fn == nil {
			return fmt.Errorf("plan names unknown function %q", entry.Function)
		}

		header(color, "before: @%s", fn.Name)
		fmt.Print(air.Disassemble(fn))

		existentialArgs, err := entry.Descriptors(fn)
		if err != nil {
			return err
		}
		argDescs := existential.ComputeArgumentDescriptors(fn)
		twin := existential.NewTransform(module, fn, argDescs, existentialArgs).Run()

		header(color, "after: @%s (thunk)", fn.Name)
		fmt.Print(air.Disassemble(fn))
		header(color, "after: @%s (specialized)", twin.Name)
		fmt.Print(air.Disassemble(twin))
	}
	return nil
}

// watchPlan re-runs the plan whenever its file is written. Editors often
// replace the file on save, so the path is re-added after rename/remove
// events.
func watchPlan(planPath string, color bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(planPath)); err != nil {
		return err
	}
	fmt.Printf("watching %s\n", planPath)

	target, err := filepath.Abs(planPath)
	if err != nil {
		return err
	}
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, _ := filepath.Abs(ev.Name)
			if abs != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := runOnce(planPath, color); err != nil {
				fmt.Fprintf(os.Stderr, "auriga-opt: %v\n", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "auriga-opt: watch: %v\n", err)
		}
	}
}

func header(color bool, format string, args ...interface{}) {
	text := fmt.Sprintf(format, args...)
	if color {
		fmt.Printf("\x1b[1m== %s ==\x1b[0m\n", text)
	} else {
		fmt.Printf("== %s ==\n", text)
	}
}
