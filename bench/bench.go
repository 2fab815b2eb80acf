// Package bench repeats transportation solves over a range of problem sizes
// and summarizes time, memory and iteration counts per size.
package bench

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"q.log/twophase/instance"
	"q.log/twophase/simplex"
)

const megabyte = 1024 * 1024

var ErrInvalidConfig = errors.New("bench: invalid configuration")

// Size is an m×n transportation problem size.
type Size struct {
	M, N int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.M, s.N)
}

// ParseSize parses sizes written as "20x30" or "20×30".
func ParseSize(s string) (Size, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "×", "x")
	ms, ns, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return Size{}, errors.Wrapf(ErrInvalidConfig, "size %q: want MxN", s)
	}
	m, err := strconv.Atoi(ms)
	if err != nil {
		return Size{}, errors.Wrapf(ErrInvalidConfig, "size %q: %v", s, err)
	}
	n, err := strconv.Atoi(ns)
	if err != nil {
		return Size{}, errors.Wrapf(ErrInvalidConfig, "size %q: %v", s, err)
	}
	if m <= 0 || n <= 0 {
		return Size{}, errors.Wrapf(ErrInvalidConfig, "size %q: dimensions must be positive", s)
	}
	return Size{M: m, N: n}, nil
}

type Config struct {
	Sizes       []Size
	Repetitions int
	// Workers bounds the number of trials solved at once. Memory figures are
	// only per-trial when Workers is 1.
	Workers int
	Seed    uint64
	// Total is the common sum of supplies and demands.
	Total int
}

func (c Config) validate() error {
	switch {
	case len(c.Sizes) == 0:
		return errors.Wrap(ErrInvalidConfig, "no sizes")
	case c.Repetitions <= 0:
		return errors.Wrapf(ErrInvalidConfig, "repetitions %d", c.Repetitions)
	case c.Workers <= 0:
		return errors.Wrapf(ErrInvalidConfig, "workers %d", c.Workers)
	case c.Total <= 0:
		return errors.Wrapf(ErrInvalidConfig, "total %d", c.Total)
	}
	return nil
}

// Trial is the measurement of a single repetition.
type Trial struct {
	Repetition int
	// Total covers generating, building and solving the instance; Build and
	// Solve are the tableau construction and simplex run within it.
	Total, Build, Solve time.Duration
	// Allocated is the number of bytes allocated during the repetition.
	Allocated  uint64
	Iterations int
	Status     simplex.Status
	Cost       float64
}

func (t Trial) ok() bool {
	return t.Status == simplex.Optimal
}

// Execution is the per-repetition row of a Record.
type Execution struct {
	Run        int     `json:"execucao"`
	Total      float64 `json:"tempo_total"`
	Build      float64 `json:"tempo_construcao"`
	Solve      float64 `json:"tempo_simplex"`
	Memory     float64 `json:"memoria_mb"`
	Iterations int     `json:"iteracoes"`
	Cost       float64 `json:"custo_total"`
	Success    bool    `json:"sucesso"`
}

func (t Trial) execution() Execution {
	return Execution{
		Run:        t.Repetition + 1,
		Total:      t.Total.Seconds(),
		Build:      t.Build.Seconds(),
		Solve:      t.Solve.Seconds(),
		Memory:     float64(t.Allocated) / megabyte,
		Iterations: t.Iterations,
		Cost:       t.Cost,
		Success:    t.ok(),
	}
}

// Record summarizes the successful trials of one size. Times are in seconds,
// memory in MB and the success rate in percent. Executions lists every
// trial, failed ones included.
type Record struct {
	Size              string      `json:"tamanho"`
	M                 int         `json:"m"`
	N                 int         `json:"n"`
	Repetitions       int         `json:"num_repeticoes"`
	Executions        []Execution `json:"execucoes"`
	MeanTime          float64     `json:"tempo_medio"`
	MedianTime        float64     `json:"tempo_mediano"`
	StdDevTime        float64     `json:"tempo_desvio"`
	MinTime           float64     `json:"tempo_min"`
	MaxTime           float64     `json:"tempo_max"`
	MeanSimplexTime   float64     `json:"tempo_simplex_medio"`
	MedianSimplexTime float64     `json:"tempo_simplex_mediano"`
	MeanMemory        float64     `json:"memoria_media"`
	MedianMemory      float64     `json:"memoria_mediana"`
	MinMemory         float64     `json:"memoria_min"`
	MaxMemory         float64     `json:"memoria_max"`
	MeanIterations    float64     `json:"iteracoes_media"`
	MinIterations     int         `json:"iteracoes_min"`
	MaxIterations     int         `json:"iteracoes_max"`
	MeanCost          float64     `json:"custo_medio"`
	SuccessRate       float64     `json:"taxa_sucesso"`
}

type Runner struct {
	solver *simplex.Solver
	cfg    Config
	logger *slog.Logger
}

func NewRunner(solver *simplex.Solver, cfg Config, logger *slog.Logger) (*Runner, error) {
	if solver == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "nil solver")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{solver: solver, cfg: cfg, logger: logger}, nil
}

// Run benchmarks every configured size in order and returns one record per
// size. Repetition k of every size uses seed Seed+k.
func (r *Runner) Run(ctx context.Context) ([]Record, error) {
	records := make([]Record, 0, len(r.cfg.Sizes))
	for _, size := range r.cfg.Sizes {
		trials, err := r.trials(ctx, size)
		if err != nil {
			return nil, errors.Wrapf(err, "benchmarking %s", size)
		}
		rec := Aggregate(size, trials)
		r.logger.Info("benchmark size done",
			slog.String("size", rec.Size),
			slog.Float64("mean_seconds", rec.MeanTime),
			slog.Float64("mean_iterations", rec.MeanIterations),
			slog.Float64("success_rate", rec.SuccessRate),
		)
		records = append(records, rec)
	}
	return records, nil
}

func (r *Runner) trials(ctx context.Context, size Size) ([]Trial, error) {
	trials := make([]Trial, r.cfg.Repetitions)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for rep := range trials {
		g.Go(func() error {
			t, err := r.trial(ctx, size, rep)
			if err != nil {
				return errors.Wrapf(err, "repetition %d", rep)
			}
			trials[rep] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trials, nil
}

func (r *Runner) trial(ctx context.Context, size Size, rep int) (Trial, error) {
	seed := r.cfg.Seed + uint64(rep)

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	start := time.Now()

	tp, err := instance.Random(size.M, size.N, r.cfg.Total, seed)
	if err != nil {
		return Trial{}, err
	}
	res, err := r.solver.SolveTransportationContext(ctx, tp)

	elapsed := time.Since(start)
	runtime.ReadMemStats(&after)
	if err != nil {
		return Trial{}, err
	}

	t := Trial{
		Repetition: rep,
		Total:      elapsed,
		Build:      res.BuildTime(),
		Solve:      res.SolveTime(),
		Allocated:  after.TotalAlloc - before.TotalAlloc,
		Iterations: res.Iterations(),
		Status:     res.Status(),
	}
	t.Cost, _ = res.Objective()

	r.logger.Debug("benchmark trial",
		slog.String("size", size.String()),
		slog.Int("repetition", rep),
		slog.Uint64("seed", seed),
		slog.Duration("elapsed", elapsed),
		slog.Duration("simplex", t.Solve),
		slog.Int("iterations", t.Iterations),
		slog.String("status", t.Status.String()),
	)
	return t, nil
}

// Aggregate summarizes trials. Statistics cover the successful trials only;
// with none they are all zero.
func Aggregate(size Size, trials []Trial) Record {
	rec := Record{
		Size:        size.String(),
		M:           size.M,
		N:           size.N,
		Repetitions: len(trials),
		Executions:  make([]Execution, 0, len(trials)),
	}

	var times, simplexTimes, mem, iters, costs []float64
	for _, t := range trials {
		rec.Executions = append(rec.Executions, t.execution())
		if !t.ok() {
			continue
		}
		times = append(times, t.Total.Seconds())
		simplexTimes = append(simplexTimes, t.Solve.Seconds())
		mem = append(mem, float64(t.Allocated)/megabyte)
		iters = append(iters, float64(t.Iterations))
		costs = append(costs, t.Cost)
	}
	if len(trials) > 0 {
		rec.SuccessRate = 100 * float64(len(times)) / float64(len(trials))
	}
	if len(times) == 0 {
		return rec
	}

	rec.MeanTime, rec.StdDevTime = stat.MeanStdDev(times, nil)
	if len(times) == 1 {
		rec.StdDevTime = 0
	}
	rec.MedianTime = median(times)
	rec.MinTime, rec.MaxTime = floats.Min(times), floats.Max(times)

	rec.MeanSimplexTime = stat.Mean(simplexTimes, nil)
	rec.MedianSimplexTime = median(simplexTimes)

	rec.MeanMemory = stat.Mean(mem, nil)
	rec.MedianMemory = median(mem)
	rec.MinMemory, rec.MaxMemory = floats.Min(mem), floats.Max(mem)

	rec.MeanIterations = stat.Mean(iters, nil)
	rec.MinIterations, rec.MaxIterations = int(floats.Min(iters)), int(floats.Max(iters))

	rec.MeanCost = stat.Mean(costs, nil)
	return rec
}

// median averages the two middle values of an even-length sample.
func median(x []float64) float64 {
	s := slices.Clone(x)
	slices.Sort(s)
	k := len(s) / 2
	if len(s)%2 == 1 {
		return s[k]
	}
	return (s[k-1] + s[k]) / 2
}

func WriteJSON(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(records), "encoding benchmark records")
}

var csvHeader = []string{
	"Tamanho", "M", "N", "Execucao", "Tempo_Total", "Tempo_Construcao",
	"Tempo_Simplex", "Memoria_MB", "Iteracoes", "Custo_Total",
}

// WriteCSV writes one row per execution of every record.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	for _, rec := range records {
		for _, e := range rec.Executions {
			row := []string{
				rec.Size,
				strconv.Itoa(rec.M),
				strconv.Itoa(rec.N),
				strconv.Itoa(e.Run),
				strconv.FormatFloat(e.Total, 'f', 6, 64),
				strconv.FormatFloat(e.Build, 'f', 6, 64),
				strconv.FormatFloat(e.Solve, 'f', 6, 64),
				strconv.FormatFloat(e.Memory, 'f', 2, 64),
				strconv.Itoa(e.Iterations),
				strconv.FormatFloat(e.Cost, 'f', 2, 64),
			}
			if err := cw.Write(row); err != nil {
				return errors.Wrapf(err, "writing csv row %s/%d", rec.Size, e.Run)
			}
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing csv")
}
