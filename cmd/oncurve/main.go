// Command oncurve reports how often each spell of a decklist can be cast on
// curve with the lands of its opening hand.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go.uber.org/zap"

	"github.com/ramonehamilton/oncurve/internal/analyzer"
	"github.com/ramonehamilton/oncurve/internal/app"
	"github.com/ramonehamilton/oncurve/internal/charts"
	"github.com/ramonehamilton/oncurve/internal/config"
	"github.com/ramonehamilton/oncurve/internal/curve"
	"github.com/ramonehamilton/oncurve/internal/export"
	"github.com/ramonehamilton/oncurve/internal/logging"
	"github.com/ramonehamilton/oncurve/internal/version"
)

var (
	deckPath      = flag.String("deck", "", "Decklist file (required). May contain Sideboard/Commander sections")
	sideboardPath = flag.String("sideboard", "", "Sideboard file, replaces any Sideboard section of -deck")
	commanderPath = flag.String("commander", "", "Commander file, replaces any Commander section of -deck")
	strategy      = flag.String("strategy", "", "Payment strategy: greedy, exact-hand or matching (default from config)")
	format        = flag.String("format", "table", "Output format: table, csv or json")
	outputPath    = flag.String("output", "", "Write the report to this file instead of stdout")
	chartPath     = flag.String("chart", "", "Write an HTML bar chart of the results to this file")
	openChart     = flag.Bool("open", false, "Open the chart in a browser after writing it")
	watch         = flag.Bool("watch", false, "Re-run the analysis whenever a decklist file changes")
	configPath    = flag.String("config", "", "Config file (default: ~/.oncurve/config.toml)")
	writeConfig   = flag.Bool("write-config", false, "Write the effective configuration to the config file and exit")
	showVersion   = flag.Bool("version", false, "Print the version and exit")

	xValue optionalInt
)

func init() {
	flag.Var(&xValue, "x", "Value substituted for X in costs (default from config)")
}

// optionalInt is an integer flag that remembers whether it was given.
// Values are passed through unchecked; the analyzer rejects negative X.
type optionalInt struct {
	value int
	set   bool
}

func (o *optionalInt) String() string {
	if o == nil || !o.set {
		return ""
	}
	return strconv.Itoa(o.value)
}

func (o *optionalInt) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("not an integer: %q", s)
	}
	o.value, o.set = v, true
	return nil
}

// ptr returns the value, or nil when the flag was not given.
func (o *optionalInt) ptr() *int {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("oncurve", version.GetVersion())
		return
	}
	if *writeConfig {
		path, err := saveConfig(*configPath, *strategy)
		if err != nil {
			fmt.Fprintf(os.Stderr, "oncurve: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config written to", path)
		return
	}
	if *deckPath == "" {
		fmt.Fprintln(os.Stderr, "oncurve: -deck is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "oncurve: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *strategy != "" {
		cfg.Analysis.Strategy = *strategy
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	outFormat, err := export.ParseFormat(*format)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	services, err := app.New(cfg, logger, app.Options{})
	if err != nil {
		return err
	}
	defer func() {
		if err := services.Close(); err != nil {
			logger.Warn("close card cache", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := services.PruneCache(ctx); err != nil {
		logger.Warn("prune card cache", zap.Error(err))
	}

	files := deckFiles{Deck: *deckPath, Sideboard: *sideboardPath, Commander: *commanderPath}
	r := &runner{
		analyzer: services.Analyzer,
		files:    files,
		xValue:   xValue.ptr(),
		format:   outFormat,
		output:   *outputPath,
		chart:    *chartPath,
		open:     *openChart,
		out:      os.Stdout,
	}

	if !*watch {
		return r.once(ctx)
	}

	// A failing run does not stop watching; the next save may fix it.
	if err := r.once(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "oncurve: %v\n", err)
	}
	err = watchFiles(ctx, files.paths(), logger, func() {
		if err := r.once(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "oncurve: %v\n", err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// saveConfig loads the configuration at path (defaults when missing),
// applies a non-empty strategy override and writes it back. It returns the
// path written.
func saveConfig(path, strategy string) (string, error) {
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return "", err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return "", err
	}
	if strategy != "" {
		cfg.Analysis.Strategy = strategy
		if err := cfg.Validate(); err != nil {
			return "", err
		}
	}
	return path, cfg.Save(path)
}

// runner performs one analysis of the deck files and prints the report.
type runner struct {
	analyzer analysisRunner
	files    deckFiles
	xValue   *int // nil selects the configured default
	format   export.Format
	output   string // empty writes to out
	chart    string
	open     bool
	out      io.Writer
}

type analysisRunner interface {
	Analyze(ctx context.Context, req analyzer.Request) (*curve.Result, error)
}

func (r *runner) once(ctx context.Context) error {
	list, err := r.files.load()
	if err != nil {
		return err
	}

	req := analyzer.Request{Decklist: list, XValue: r.xValue}

	result, err := r.analyzer.Analyze(ctx, req)
	if err != nil {
		return err
	}

	if r.output != "" {
		if err := export.WriteFile(r.output, r.format, result, true); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Report written to %s\n", r.output)
	} else if err := export.Write(r.out, r.format, result); err != nil {
		return err
	}

	if r.chart == "" {
		return nil
	}
	if err := charts.WriteCastability(result, charts.DefaultChartConfig(), r.chart); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "\nChart written to %s\n", r.chart)
	if r.open {
		return charts.OpenInBrowser(r.chart)
	}
	return nil
}
