// Command genvectors synthesizes reference weather reports with the clock
// pinned, so other services and the verify command can check their output
// against a stable fixture.
//
// Usage:
//
//	go run ./cmd/genvectors -out testdata/vectors.json
//	go run ./cmd/genvectors -out vectors.json -clock 2026-01-01T00:00:00Z
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/couchcryptid/astroweather-service/internal/domain"
	"github.com/couchcryptid/astroweather-service/internal/vectors"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the vectors JSON fixture")
	clockFlag := flag.String("clock", vectors.DefaultClock.Format(time.RFC3339), "RFC 3339 instant the fixture is generated at")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	clock, err := time.Parse(time.RFC3339, *clockFlag)
	if err != nil {
		return fmt.Errorf("invalid -clock: %w", err)
	}

	f, err := vectors.Generate(vectors.DefaultQueries, clock)
	if err != nil {
		return err
	}
	if err := vectors.Write(*out, f); err != nil {
		return err
	}

	log.Printf("wrote %d vectors to %s (clock %s)", len(f.Vectors), *out, clock.Format(time.RFC3339))
	printStats(f)
	return nil
}

func printStats(f vectors.File) {
	counts := make(map[domain.Condition]int, len(domain.Conditions))
	for _, v := range f.Vectors {
		counts[v.Report.Condition]++
	}
	for _, c := range domain.Conditions {
		log.Printf("  %-7s %d", c, counts[c])
	}
}
