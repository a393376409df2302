// Command option-surface computes Black-Scholes price and greek surfaces
// for one contract and writes them as JSON, CSV or PNG, or serves them over
// REST with -rest.
//
//	option-surface [flags] [spot strike rate expiry volatility kind]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/contactkeval/option-surface/internal/config"
	"github.com/contactkeval/option-surface/internal/logger"
	"github.com/contactkeval/option-surface/internal/pricing"
	"github.com/contactkeval/option-surface/internal/report"
	"github.com/contactkeval/option-surface/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

// options are command-line overrides; zero values leave the config alone.
type options struct {
	configPath string
	greeks     string
	expr       string
	out        string
	format     string
	addr       string
	verbosity  int
	rest       bool
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	fs := flag.NewFlagSet("option-surface", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	fs.StringVar(&o.configPath, "config", "", "path to YAML/JSON/TOML config (optional)")
	fs.StringVar(&o.greeks, "greeks", "", "comma separated surfaces to compute, or \"all\"")
	fs.StringVar(&o.expr, "expr", "", "extra surface from an expression, e.g. \"delta * spot\"")
	fs.StringVar(&o.out, "out", "", "output directory")
	fs.StringVar(&o.format, "format", "", "comma separated output formats: json, csv, png")
	fs.StringVar(&o.addr, "addr", "", "REST listen address")
	fs.IntVar(&o.verbosity, "v", -1, "verbosity 0=errors 1=info 2=debug 3=trace")
	fs.BoolVar(&o.rest, "rest", false, "run as REST server")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: option-surface [flags] [spot strike rate expiry volatility kind]\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return o, fs.Args(), nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// apply layers the flags over cfg and revalidates it.
func (o *options) apply(cfg *config.Config) error {
	if o.greeks != "" {
		cfg.Greeks = splitList(o.greeks)
	}
	if o.expr != "" {
		cfg.Expression = o.expr
	}
	if o.out != "" {
		cfg.Report.Dir = o.out
	}
	if o.format != "" {
		cfg.Report.Formats = splitList(strings.ToLower(o.format))
	}
	if o.addr != "" {
		cfg.Server.Addr = o.addr
	}
	if o.verbosity >= 0 {
		cfg.Log.Verbosity = o.verbosity
	}
	return cfg.Validate()
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	opts, positional, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err := opts.apply(cfg); err != nil {
		return err
	}

	closer := logger.Configure(logger.Options{
		Verbosity:  cfg.Log.Verbosity,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	defer closer.Close()

	if opts.rest {
		return serve(ctx, cfg)
	}

	var contract *pricing.Contract
	if len(positional) > 0 {
		contract, err = pricing.ParseContract(positional)
	} else {
		contract, err = pricing.NewContract(cfg.Contract.Params())
	}
	if err != nil {
		return err
	}

	return render(contract, cfg)
}

func render(contract *pricing.Contract, cfg *config.Config) error {
	sink, err := report.NewSink(cfg.Report.Dir, cfg.Report.Formats)
	if err != nil {
		return err
	}

	start := time.Now()
	p := contract.Params()
	logger.Infof("event=contract spot=%g strike=%g rate=%g expiry=%g volatility=%g kind=%s",
		p.Spot, p.Strike, p.Rate, p.Expiry, p.Volatility, p.Kind)

	rows, cols := contract.Grid().Dims()
	logger.Debugf("event=grid rows=%d cols=%d", rows, cols)

	count := 0
	for _, g := range cfg.SelectedGreeks() {
		s, err := contract.Surface(g)
		if err != nil {
			return err
		}
		report.Emit(sink, s)
		count++
	}

	if cfg.Expression != "" {
		s, err := contract.Expression(cfg.Expression)
		if err != nil {
			return err
		}
		report.Emit(sink, s)
		count++
	}

	logger.Infof("event=done surfaces=%d dir=%s formats=%s elapsed=%v",
		count, cfg.Report.Dir, strings.Join(cfg.Report.Formats, ","), time.Since(start))
	return nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	if !logger.Enabled(logger.Debug) {
		gin.SetMode(gin.ReleaseMode)
	}

	s, err := server.New(cfg.Server)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.Run(ctx)
}
