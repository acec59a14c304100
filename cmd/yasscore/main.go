// Command yasscore is a thin CLI wrapping the sat package's Solver: load a
// DIMACS CNF instance, run Solve to completion, print the result. The
// interesting work lives in internal/sat; this command exists only to
// make the core exercisable end-to-end (spec.md §1 Non-goals: parsing and
// I/O are out of scope for the core itself).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/satcore/yasscore/internal/sat"
	"github.com/satcore/yasscore/parsers"
)

var flagCPUProfile = flag.Bool(
	"cpuprof",
	false,
	"save pprof CPU profile in cpuprof",
)

var flagMemProfile = flag.Bool(
	"memprof",
	false,
	"save pprof memory profile in memprof",
)

var flagGzip = flag.Bool(
	"gzip",
	false,
	"the instance file is gzip-compressed",
)

type config struct {
	instanceFile string
	memProfile   bool
	cpuProfile   bool
	gzipped      bool
}

func parseConfig() (*config, error) {
	flag.Parse()

	if flag.NArg() == 0 || flag.Arg(0) == "" {
		return nil, fmt.Errorf("missing instance file")
	}
	return &config{
		instanceFile: flag.Arg(0),
		memProfile:   *flagMemProfile,
		cpuProfile:   *flagCPUProfile,
		gzipped:      *flagGzip,
	}, nil
}

func run(cfg *config) error {
	s := sat.NewSolver(sat.DefaultOptions())

	if err := parsers.LoadDIMACS(cfg.instanceFile, cfg.gzipped, s); err != nil {
		return fmt.Errorf("could not load instance: %s", err)
	}

	t := time.Now()
	status, err := s.Solve(nil, 0)
	if err != nil {
		return fmt.Errorf("solve error: %s", err)
	}
	elapsed := time.Since(t)

	fmt.Printf("c time (sec): %f\n", elapsed.Seconds())
	fmt.Printf("c status:     %s\n", status)

	return nil
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.cpuProfile {
		f, err := os.Create("cpuprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}

	if cfg.memProfile {
		f, err := os.Create("memprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}
}
