// Package main provides CMA-ES calibration for finding ecosystem
// parameters that sustain stable multi-biome runs.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/kkingfung/ecosim/config"
)

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxTicks := flag.Int64("max-ticks", 50000, "Simulation duration per evaluation in ticks")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 100, "Maximum number of evaluations")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	params := NewParamVector()

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, *maxTicks, evalSeeds, baseCfg)

	initX := params.Normalize(params.DefaultVector())
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			loss := evaluator.Evaluate(raw)
			log.Printf("eval %d: freq=%.5f comp=%.3f trans=%.4f loss=%.4f",
				evaluator.Evals(), raw[0], raw[1], raw[2], loss)
			return loss
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // evaluations share the base config
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
	}

	start := time.Now()
	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization stopped: %v", err)
	}
	if result == nil {
		log.Fatal("no result produced")
	}

	best := params.Denormalize(result.X)
	log.Printf("done in %s: sustainability=%.4f freq=%.5f comp=%.3f trans=%.4f",
		time.Since(start).Round(time.Second), -result.F, best[0], best[1], best[2])

	out := map[string]float64{
		"sustainability":        -result.F,
		"disturbance_frequency": best[0],
		"competition_intensity": best[1],
		"transition_rate":       best[2],
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal result: %v", err)
	}
	resultPath := filepath.Join(*outputDir, "best.json")
	if err := os.WriteFile(resultPath, data, 0644); err != nil {
		log.Fatalf("failed to write result: %v", err)
	}
	fmt.Println(resultPath)
}
