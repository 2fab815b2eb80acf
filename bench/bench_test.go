package bench

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"q.log/twophase/simplex"
)

const delta = 1e-9

func TestParseSize(t *testing.T) {
	for in, want := range map[string]Size{
		"20x30":  {20, 30},
		" 5X5 ":  {5, 5},
		"10×100": {10, 100},
	} {
		got, err := ParseSize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "20", "ax3", "3xb", "0x4", "4x-1"} {
		_, err := ParseSize(in)
		assert.ErrorIs(t, err, ErrInvalidConfig, in)
	}

	assert.Equal(t, "7x9", Size{7, 9}.String())
}

func TestAggregate(t *testing.T) {
	trials := []Trial{
		{Repetition: 0, Total: 1 * time.Second, Build: 100 * time.Millisecond, Solve: 800 * time.Millisecond,
			Allocated: 2 * megabyte, Iterations: 10, Status: simplex.Optimal, Cost: 100},
		{Repetition: 1, Total: 3 * time.Second, Build: 100 * time.Millisecond, Solve: 2 * time.Second,
			Allocated: 4 * megabyte, Iterations: 30, Status: simplex.Optimal, Cost: 300},
		{Repetition: 2, Total: 2 * time.Second, Build: 100 * time.Millisecond, Solve: 1500 * time.Millisecond,
			Allocated: 6 * megabyte, Iterations: 20, Status: simplex.Optimal, Cost: 200},
		{Repetition: 3, Total: 9 * time.Second, Solve: 9 * time.Second,
			Allocated: 9 * megabyte, Iterations: 99, Status: simplex.IterationLimit},
	}

	rec := Aggregate(Size{3, 4}, trials)

	assert.Equal(t, "3x4", rec.Size)
	assert.Equal(t, 3, rec.M)
	assert.Equal(t, 4, rec.N)
	assert.Equal(t, 4, rec.Repetitions)
	assert.InDelta(t, 75.0, rec.SuccessRate, delta)

	assert.InDelta(t, 2.0, rec.MeanTime, delta)
	assert.InDelta(t, 2.0, rec.MedianTime, delta)
	assert.InDelta(t, 1.0, rec.StdDevTime, delta)
	assert.InDelta(t, 1.0, rec.MinTime, delta)
	assert.InDelta(t, 3.0, rec.MaxTime, delta)

	assert.InDelta(t, 4.3/3, rec.MeanSimplexTime, delta)
	assert.InDelta(t, 1.5, rec.MedianSimplexTime, delta)

	assert.InDelta(t, 4.0, rec.MeanMemory, delta)
	assert.InDelta(t, 4.0, rec.MedianMemory, delta)
	assert.InDelta(t, 2.0, rec.MinMemory, delta)
	assert.InDelta(t, 6.0, rec.MaxMemory, delta)

	assert.InDelta(t, 20.0, rec.MeanIterations, delta)
	assert.Equal(t, 10, rec.MinIterations)
	assert.Equal(t, 30, rec.MaxIterations)
	assert.InDelta(t, 200.0, rec.MeanCost, delta)

	// every trial is listed, the failed one too
	require.Len(t, rec.Executions, 4)
	first := rec.Executions[0]
	assert.Equal(t, 1, first.Run)
	assert.InDelta(t, 1.0, first.Total, delta)
	assert.InDelta(t, 0.1, first.Build, delta)
	assert.InDelta(t, 0.8, first.Solve, delta)
	assert.InDelta(t, 2.0, first.Memory, delta)
	assert.True(t, first.Success)
	assert.Equal(t, 4, rec.Executions[3].Run)
	assert.False(t, rec.Executions[3].Success)
	assert.Equal(t, 99, rec.Executions[3].Iterations)
}

func TestAggregateSingleAndEmpty(t *testing.T) {
	rec := Aggregate(Size{1, 1}, []Trial{{Total: time.Second, Status: simplex.Optimal, Iterations: 3}})
	assert.Equal(t, 0.0, rec.StdDevTime)
	assert.InDelta(t, 1.0, rec.MedianTime, delta)
	assert.Equal(t, 100.0, rec.SuccessRate)

	rec = Aggregate(Size{1, 1}, []Trial{{Status: simplex.Infeasible}})
	assert.Equal(t, 0.0, rec.SuccessRate)
	assert.Equal(t, 0.0, rec.MeanTime)
	assert.Equal(t, 1, rec.Repetitions)
	assert.Len(t, rec.Executions, 1)
}

func TestMedianEven(t *testing.T) {
	x := []float64{4, 1, 3, 2}
	assert.InDelta(t, 2.5, median(x), delta)
	assert.Equal(t, []float64{4, 1, 3, 2}, x)
}

func TestRunner(t *testing.T) {
	solver, err := simplex.New()
	require.NoError(t, err)

	r, err := NewRunner(solver, Config{
		Sizes:       []Size{{2, 3}, {4, 4}},
		Repetitions: 3,
		Workers:     2,
		Seed:        42,
		Total:       1000,
	}, nil)
	require.NoError(t, err)

	records, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	for _, rec := range records {
		assert.Equal(t, 3, rec.Repetitions)
		assert.Equal(t, 100.0, rec.SuccessRate, rec.Size)
		assert.Greater(t, rec.MeanCost, 0.0)
		assert.GreaterOrEqual(t, rec.MaxIterations, rec.MinIterations)
		assert.LessOrEqual(t, rec.MinMemory, rec.MedianMemory)
		assert.LessOrEqual(t, rec.MedianMemory, rec.MaxMemory)

		require.Len(t, rec.Executions, 3)
		for k, e := range rec.Executions {
			assert.Equal(t, k+1, e.Run)
			assert.True(t, e.Success)
			assert.Positive(t, e.Solve)
			assert.LessOrEqual(t, e.Build+e.Solve, e.Total+1e-9)
		}
	}
	assert.Equal(t, "2x3", records[0].Size)
	assert.Equal(t, "4x4", records[1].Size)
}

func TestRunnerCancelled(t *testing.T) {
	solver, err := simplex.New()
	require.NoError(t, err)

	r, err := NewRunner(solver, Config{Sizes: []Size{{5, 5}}, Repetitions: 2, Workers: 1, Total: 1000}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRunnerRejectsConfig(t *testing.T) {
	solver, err := simplex.New()
	require.NoError(t, err)

	good := Config{Sizes: []Size{{2, 2}}, Repetitions: 1, Workers: 1, Total: 10}
	for name, mutate := range map[string]func(*Config){
		"no sizes":    func(c *Config) { c.Sizes = nil },
		"repetitions": func(c *Config) { c.Repetitions = 0 },
		"workers":     func(c *Config) { c.Workers = 0 },
		"total":       func(c *Config) { c.Total = -1 },
	} {
		cfg := good
		mutate(&cfg)
		_, err := NewRunner(solver, cfg, nil)
		assert.ErrorIs(t, err, ErrInvalidConfig, name)
	}

	_, err = NewRunner(nil, good, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, []Record{{Size: "2x2", M: 2, N: 2, SuccessRate: 100}}))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "2x2", decoded[0]["tamanho"])
	assert.Equal(t, 100.0, decoded[0]["taxa_sucesso"])
	assert.Contains(t, decoded[0], "tempo_mediano")
	assert.Contains(t, decoded[0], "tempo_simplex_medio")
	assert.Contains(t, decoded[0], "memoria_mediana")
	assert.Contains(t, decoded[0], "execucoes")
	assert.Contains(t, decoded[0], "iteracoes_max")
}

func TestWriteCSV(t *testing.T) {
	records := []Record{{
		Size: "2x3", M: 2, N: 3,
		Executions: []Execution{
			{Run: 1, Total: 0.5, Build: 0.125, Solve: 0.25, Memory: 1.5, Iterations: 7, Cost: 1234.5, Success: true},
			{Run: 2, Total: 1, Build: 0.25, Solve: 0.5, Memory: 2, Iterations: 9, Cost: 99},
		},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"2x3", "2", "3", "1", "0.500000", "0.125000", "0.250000", "1.50", "7", "1234.50"}, rows[1])
	assert.Equal(t, "2", rows[2][3])
}
