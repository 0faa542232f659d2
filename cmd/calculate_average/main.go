// Command calculate_average prints the min/mean/max temperature of every
// station in a measurements file.
//
//	calculate_average [flags] [measurements_file]
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"runtime/pprof"

	"xpug.it/1brc-agg/internal/aggregate"
	"xpug.it/1brc-agg/internal/baseline"
	"xpug.it/1brc-agg/internal/calc"
	"xpug.it/1brc-agg/internal/format"
	"xpug.it/1brc-agg/internal/partition"
	"xpug.it/1brc-agg/internal/record"
	"xpug.it/1brc-agg/internal/source"
)

const defaultMeasurementsPath = "measurements.txt"

var (
	cpuprofile  = flag.String("cpuprofile", "", "write cpu profile to `file`")
	workers     = flag.Int("workers", runtime.NumCPU(), "number of partitions scanned in parallel")
	sourceMode  = flag.String("source", "map", "how to load the file: map or read")
	strict      = flag.Bool("strict", false, "reject a file whose last record has no trailing newline")
	useBaseline = flag.Bool("baseline", false, "use the single-threaded reference implementation")
	verbose     = flag.Bool("v", false, "log progress to stderr")
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("calculate_average: ")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: calculate_average [flags] [measurements_file]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(2)
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	if err := run(dataFileName(), os.Stdout); err != nil {
		pprof.StopCPUProfile()
		log.Fatal(describe(err))
	}
}

func dataFileName() string {
	if flag.NArg() == 1 {
		return flag.Arg(0)
	}
	return defaultMeasurementsPath
}

func workersSetExplicitly() bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "workers" {
			set = true
		}
	})
	return set
}

func run(name string, stdout io.Writer) error {
	var logger *log.Logger
	if *verbose {
		logger = log.New(os.Stderr, "calculate_average: ", log.Lmicroseconds)
	}

	stations, err := compute(name, logger)
	if err != nil {
		return err
	}

	return format.Write(stdout, stations)
}

func compute(name string, logger *log.Logger) (map[string]aggregate.Aggregate, error) {
	mode, err := source.ParseMode(*sourceMode)
	if err != nil {
		return nil, err
	}

	if *useBaseline {
		return computeBaseline(name, mode)
	}

	// the default worker count follows the machine, not the file, so small
	// files get fewer partitions instead of an error
	cfg := calc.Config{
		Workers:           *workers,
		AdjustWorkers:     !workersSetExplicitly(),
		RequireTerminator: *strict,
		Logger:            logger,
	}
	table, err := calc.ProcessFile(name, mode, cfg)
	if err != nil {
		return nil, err
	}
	return table.Map(), nil
}

func computeBaseline(name string, mode source.Mode) (_ map[string]aggregate.Aggregate, err error) {
	src, err := source.Open(name, mode)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := src.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return baseline.Aggregate(bytes.NewReader(src.Bytes()))
}

// describe renders err as a one-line diagnostic naming the failure kind.
func describe(err error) string {
	var (
		serr *source.Error
		cerr *partition.ConfigError
		merr *record.MalformedError
	)
	switch {
	case errors.As(err, &merr):
		return fmt.Sprintf("malformed record at byte %d: %q: %s", merr.Offset, merr.Line, merr.Reason)
	case errors.As(err, &cerr):
		return "config: " + cerr.Error()
	case errors.As(err, &serr):
		return "io: " + serr.Error()
	}
	return err.Error()
}
