// Package calc runs the partition, scan and merge pipeline over a whole
// measurements buffer.
package calc

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"xpug.it/1brc-agg/internal/aggregate"
	"xpug.it/1brc-agg/internal/partition"
	"xpug.it/1brc-agg/internal/record"
	"xpug.it/1brc-agg/internal/source"
)

// Config is the run configuration. There are no package-level knobs.
type Config struct {
	// Workers is the number of partitions, each scanned by its own
	// goroutine.
	Workers int
	// AdjustWorkers lowers Workers to what the input can be split into
	// instead of failing with a partition.ConfigError.
	AdjustWorkers bool
	// RequireTerminator rejects input whose last byte is not '\n'.
	RequireTerminator bool
	// Logger receives progress output. Nil disables it.
	Logger *log.Logger
}

func (c Config) logf(format string, args ...any) {
	if c.Logger != nil {
		c.Logger.Printf(format, args...)
	}
}

type result struct {
	table   *aggregate.Table
	err     error
	elapsed time.Duration
}

// Process aggregates data using cfg.Workers partitions and returns the
// merged table, which owns its keys. If any partition fails, no table is
// returned and the error of the partition nearest the start of data wins.
func Process(data []byte, cfg Config) (*aggregate.Table, error) {
	start := time.Now()
	if cfg.AdjustWorkers {
		if n := partition.Feasible(data, cfg.Workers); n != cfg.Workers {
			cfg.logf("reducing workers from %d to %d for %d bytes", cfg.Workers, n, len(data))
			cfg.Workers = n
		}
	}
	ranges, err := partition.Split(data, cfg.Workers)
	if err != nil {
		return nil, err
	}
	cfg.logf("%d bytes in %d partitions", len(data), len(ranges))

	var wg sync.WaitGroup
	wg.Add(len(ranges))

	results := make([]result, len(ranges))
	opts := aggregate.ScanOptions{RequireTerminator: cfg.RequireTerminator}
	for i, r := range ranges {
		go func(i int, r partition.Range) {
			defer wg.Done()
			begin := time.Now()
			t, err := aggregate.Scan(data[r.Start:r.End], int64(r.Start), opts)
			results[i] = result{table: t, err: err, elapsed: time.Since(begin)}
		}(i, r)
	}
	wg.Wait()
	for i, res := range results {
		if res.err != nil {
			cfg.logf("partition %d failed after %v: %v", i, res.elapsed, res.err)
			continue
		}
		cfg.logf("partition %d done (%d bytes, %d stations, %v)", i, ranges[i].Len(), res.table.Len(), res.elapsed)
	}
	cfg.logf("scanned in %v", time.Since(start))

	tables := make([]*aggregate.Table, 0, len(results))
	for _, res := range results {
		if res.err != nil {
			return nil, res.err
		}
		tables = append(tables, res.table)
	}

	merged := aggregate.Merge(tables...)
	cfg.logf("merged %d stations in %v", merged.Len(), time.Since(start))
	return merged, nil
}

// ProcessFile opens path in the given mode, processes it and releases the
// file. The returned table does not reference the file contents.
func ProcessFile(path string, mode source.Mode, cfg Config) (_ *aggregate.Table, err error) {
	src, err := source.Open(path, mode)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := src.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	cfg.logf("opened %s (%v, %d bytes)", path, mode, src.Len())

	t, err := Process(src.Bytes(), cfg)
	if err != nil {
		var merr *record.MalformedError
		if errors.As(err, &merr) {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, err
	}
	return t, nil
}
