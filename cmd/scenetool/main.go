// Command scenetool inspects and rewrites annotation scene files.
//
//	scenetool check FILE       report loaded and skipped records
//	scenetool normalize FILE   rewrite records in canonical form
//	scenetool bounds FILE      print each shape's screen bounding box
//	scenetool render FILE      print the draw commands for the scene
//	scenetool defaults         print the effective style defaults
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/inamate/annotator/internal/config"
	"github.com/inamate/annotator/internal/document"
	"github.com/inamate/annotator/internal/engine"
	"github.com/inamate/annotator/internal/scene"
	"github.com/inamate/annotator/internal/textlayout"
)

var errUsage = errors.New("usage: scenetool check|normalize|bounds|render|defaults [flags] [FILE]")

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))

	if err := run(cfg, os.Args[1:], os.Stdout); err != nil {
		slog.Error("scenetool failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, args []string, stdout io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}
	name, args := args[0], args[1:]

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	out := fs.String("o", "", "write output to this file instead of stdout")
	strict := fs.Bool("strict", false, "fail when any record is skipped or degraded")
	if err := fs.Parse(args); err != nil {
		return err
	}

	w := stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	if name == "defaults" {
		d, err := config.LoadDefaults(cfg.DefaultsFile)
		if err != nil {
			return err
		}
		data, err := config.MarshalDefaults(d)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	if fs.NArg() != 1 {
		return errUsage
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("read scene: %w", err)
	}
	shapes, report, err := document.DecodeScene(data)
	if err != nil {
		return err
	}
	if *strict && len(report.Problems) > 0 {
		return fmt.Errorf("%s: %w", fs.Arg(0), report.Err())
	}

	switch name {
	case "check":
		fmt.Fprintf(w, "records: %d\nloaded: %d\nskipped: %d\n", report.Total, report.Loaded, report.Skipped)
		for _, p := range report.Problems {
			fmt.Fprintf(w, "  %v\n", p)
		}
		return nil

	case "normalize":
		s, err := newScene(cfg)
		if err != nil {
			return err
		}
		s.Load(shapes, false)
		data, err := document.EncodeScene(s.Shapes())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err

	case "bounds":
		for i, sh := range shapes {
			r, ok := sh.BoundingBox()
			if !ok {
				fmt.Fprintf(w, "%d\t%s\t%s\tunbounded\n", i, sh.Kind, sh.ID)
				continue
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%.1f %.1f %.1f %.1f\n", i, sh.Kind, sh.ID, r.X, r.Y, r.Width, r.Height)
		}
		return nil

	case "render":
		eng := engine.NewEngine(scene.Options{HistoryLimit: cfg.HistoryLimit, HandleSize: cfg.HandleSize})
		if _, err := eng.LoadScene(string(data), false); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w, eng.Render())
		return err
	}
	return errUsage
}

func newScene(cfg *config.Config) (*scene.Scene, error) {
	d, err := config.LoadDefaults(cfg.DefaultsFile)
	if err != nil {
		return nil, err
	}
	return scene.New(scene.Options{
		HistoryLimit: cfg.HistoryLimit,
		HandleSize:   cfg.HandleSize,
		Defaults:     &d,
		Measurer:     textlayout.NewMeasurer(),
	}), nil
}
