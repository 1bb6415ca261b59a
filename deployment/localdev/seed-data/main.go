// Command seed-data writes synthetic Backblaze-shaped CSV snapshots for
// local drivehealth runs. Most drives are healthy; a configurable fraction
// carries the failure label together with elevated error counters.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

var header = []string{
	"serial_number", "model", "capacity_bytes", "failure",
	"smart_5_raw", "smart_9_raw", "smart_187_raw",
	"smart_194_raw", "smart_197_raw", "smart_198_raw",
}

var driveModels = []string{"ST4000DM000", "HMS5C4040ALE640", "WD30EFRX", "TOSHIBA DT01ACA300"}

func main() {
	var (
		out         string
		days        int
		drives      int
		failureRate float64
		seed        int64
	)
	flag.StringVar(&out, "out", "training_data", "Output directory for CSV snapshots")
	flag.IntVar(&days, "days", 3, "Number of daily snapshot files")
	flag.IntVar(&drives, "drives", 500, "Drives per snapshot")
	flag.Float64Var(&failureRate, "failure-rate", 0.01, "Fraction of drives marked failed")
	flag.Int64Var(&seed, "seed", 7, "Random seed")
	flag.Parse()

	if err := os.MkdirAll(out, 0o755); err != nil {
		log.Fatalf("create output directory: %v", err)
	}

	rng := rand.New(rand.NewSource(seed))
	day := time.Date(2013, 4, 10, 0, 0, 0, 0, time.UTC)

	for d := 0; d < days; d++ {
		name := filepath.Join(out, day.AddDate(0, 0, d).Format("2006-01-02")+".csv")
		if err := writeSnapshot(name, drives, failureRate, rng); err != nil {
			log.Fatalf("write %s: %v", name, err)
		}
		log.Printf("wrote %s (%d drives)", name, drives)
	}
}

func writeSnapshot(path string, drives int, failureRate float64, rng *rand.Rand) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}

	for i := 0; i < drives; i++ {
		failed := rng.Float64() < failureRate
		if err := w.Write(driveRow(i, failed, rng)); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func driveRow(i int, failed bool, rng *rand.Rand) []string {
	serial := fmt.Sprintf("Z30%06d", i)
	model := driveModels[rng.Intn(len(driveModels))]
	powerOnHours := 5000 + rng.Intn(35000)

	reallocated := 0
	uncorrectable := 0
	pending := 0
	offline := 0
	temperature := 25 + rng.Intn(12)
	failure := "0"

	if failed {
		failure = "1"
		reallocated = 100 + rng.Intn(900)
		uncorrectable = 10 + rng.Intn(80)
		pending = 20 + rng.Intn(200)
		offline = rng.Intn(50)
		temperature = 45 + rng.Intn(20)
	} else if rng.Float64() < 0.05 {
		// A few healthy drives still show minor wear.
		reallocated = rng.Intn(8)
		pending = rng.Intn(3)
	}

	return []string{
		serial,
		model,
		"4000787030016",
		failure,
		fmt.Sprint(reallocated),
		fmt.Sprint(powerOnHours),
		fmt.Sprint(uncorrectable),
		fmt.Sprint(temperature),
		fmt.Sprint(pending),
		fmt.Sprint(offline),
	}
}
