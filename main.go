package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"q.log/twophase/bench"
	"q.log/twophase/config"
	"q.log/twophase/instance"
	"q.log/twophase/logging"
	"q.log/twophase/simplex"
)

const usage = `usage:
  twophase solve <file.mps>
  twophase bench

TWOPHASE_CONFIG names an optional config file; TWOPHASE_* variables
override single settings (e.g. TWOPHASE_SOLVER_METHOD=big-m).`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "twophase:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string) error {
	cfg, err := config.Load(os.Getenv("TWOPHASE_CONFIG"))
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(logging.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return err
	}
	defer closeLog()

	solver, err := newSolver(cfg.Solver, logger)
	if err != nil {
		return err
	}

	switch cmd {
	case "solve":
		if len(args) != 1 {
			return errors.New("solve needs exactly one mps file")
		}
		return solve(ctx, solver, args[0], os.Stdout)
	case "bench":
		return runBench(ctx, solver, cfg.Bench, logger)
	default:
		return errors.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func newSolver(cfg config.SolverConfig, logger *slog.Logger) (*simplex.Solver, error) {
	method, err := simplex.ParseMethod(cfg.Method)
	if err != nil {
		return nil, err
	}
	return simplex.New(
		simplex.WithEpsilon(cfg.Epsilon),
		simplex.WithMaxIterations(cfg.MaxIterations),
		simplex.WithMethod(method),
		simplex.WithBigM(cfg.BigM),
		simplex.WithBlandRule(cfg.Bland),
		simplex.WithLogger(logger),
	)
}

func solve(ctx context.Context, solver *simplex.Solver, filename string, out io.Writer) error {
	p, err := instance.NewReader(filename).Read()
	if err != nil {
		return err
	}

	res, err := solver.SolveContext(ctx, p)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "status: %s\n", res.Status())
	fmt.Fprintf(out, "iterations: %d (phase 1: %d)\n", res.Iterations(), res.Phase1Iterations())
	obj, ok := res.Objective()
	if !ok {
		return nil
	}
	fmt.Fprintf(out, "objective: %.10g\n", obj)
	for i := range p.NumCols() {
		name := fmt.Sprintf("x%d", i+1)
		if p.Names != nil {
			name = p.Names[i]
		}
		fmt.Fprintf(out, "%s = %.10g\n", name, res.Value(i))
	}
	return nil
}

func runBench(ctx context.Context, solver *simplex.Solver, cfg config.BenchConfig, logger *slog.Logger) error {
	sizes := make([]bench.Size, 0, len(cfg.Sizes))
	for _, s := range cfg.Sizes {
		size, err := bench.ParseSize(s)
		if err != nil {
			return err
		}
		sizes = append(sizes, size)
	}

	r, err := bench.NewRunner(solver, bench.Config{
		Sizes:       sizes,
		Repetitions: cfg.Repetitions,
		Workers:     cfg.Workers,
		Seed:        cfg.Seed,
		Total:       cfg.Total,
	}, logger)
	if err != nil {
		return err
	}

	records, err := r.Run(ctx)
	if err != nil {
		return err
	}

	if cfg.CSV != "" {
		if err := writeFile(cfg.CSV, records, bench.WriteCSV); err != nil {
			return err
		}
		logger.Info("benchmark csv written", slog.String("file", cfg.CSV))
	}
	if cfg.Output == "" {
		return bench.WriteJSON(os.Stdout, records)
	}
	if err := writeFile(cfg.Output, records, bench.WriteJSON); err != nil {
		return err
	}
	logger.Info("benchmark written", slog.String("file", cfg.Output), slog.Int("sizes", len(records)))
	return nil
}

func writeFile(path string, records []bench.Record, write func(io.Writer, []bench.Record) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating benchmark output")
	}
	if err := write(f, records); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}
