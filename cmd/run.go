/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/profile"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/meshtally/InputParameters"
	"github.com/notargets/meshtally/simulation"
	"github.com/notargets/meshtally/tally"
	"github.com/notargets/meshtally/utils"
)

type RunOptions struct {
	ScenarioFile string
	Profile      string // cpu, mem or empty
	MetricsAddr  string
	MaxRows      int
	Verbose      bool
}

// RunCmd represents the run command
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Transport particle histories and report the tallies of a scenario",
	Long: `
Reads a scenario file, builds its meshes, filters and tallies, runs the batches
and prints the mean and standard error of every nonzero tally bin.

meshtally run -I scenario.yaml --workers 8 --batches 20`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			ip *InputParameters.InputParameters
		)
		opts := RunOptions{
			ScenarioFile: viper.GetString("inputConditionsFile"),
			Profile:      viper.GetString("profile"),
			MetricsAddr:  viper.GetString("metricsAddr"),
			MaxRows:      viper.GetInt("maxRows"),
			Verbose:      viper.GetBool("verbose"),
		}
		if ip, err = processInput(opts.ScenarioFile); err != nil {
			return
		}
		applyOverrides(&ip.Settings)
		slog.SetDefault(newLogger(os.Stderr, opts.Verbose))
		switch opts.Profile {
		case "":
		case "cpu":
			defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
		case "mem":
			defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
		default:
			return fmt.Errorf("unknown profile %q, use cpu or mem", opts.Profile)
		}
		if opts.MetricsAddr != "" {
			stop := serveMetrics(opts.MetricsAddr)
			defer stop()
		}
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		ip.Print()
		_, err = RunScenario(ctx, ip, os.Stdout, opts.MaxRows)
		return
	},
}

func init() {
	rootCmd.AddCommand(RunCmd)
	RunCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML scenario file with Settings, Meshes, Filters and Tallies")
	RunCmd.Flags().IntP("workers", "w", 0, "worker goroutines, 0 = one per CPU (overrides Settings.Workers)")
	RunCmd.Flags().IntP("batches", "b", 0, "number of batches (overrides Settings.Batches)")
	RunCmd.Flags().IntP("particles", "p", 0, "histories per batch (overrides Settings.Particles)")
	RunCmd.Flags().Uint64P("seed", "s", 0, "random number seed (overrides Settings.Seed)")
	RunCmd.Flags().String("profile", "", "write a cpu or mem profile to the current directory")
	RunCmd.Flags().String("metricsAddr", "", "serve Prometheus metrics on this address during the run, e.g. :9090")
	RunCmd.Flags().Int("maxRows", 50, "maximum bins printed per tally, 0 = all")
	for _, name := range []string{"inputConditionsFile", "workers", "batches", "particles", "seed",
		"profile", "metricsAddr", "maxRows"} {
		_ = viper.BindPFlag(name, RunCmd.Flags().Lookup(name))
	}
}

// applyOverrides replaces scenario settings given on the command line, in the
// config file or in the environment
func applyOverrides(s *InputParameters.Settings) {
	if viper.IsSet("workers") {
		s.Workers = viper.GetInt("workers")
	}
	if viper.IsSet("batches") {
		s.Batches = viper.GetInt("batches")
	}
	if viper.IsSet("particles") {
		s.Particles = viper.GetInt("particles")
	}
	if viper.IsSet("seed") {
		s.Seed = viper.GetUint64("seed")
	}
}

func processInput(fileName string) (ip *InputParameters.InputParameters, err error) {
	if len(fileName) == 0 {
		exampleFile := `
########################################
Title: "Test Case"
Settings:
  Batches: 10
  Particles: 1000
  Medium: {TotalXS: 0.5, Absorption: 0.3, Radius: 30}
Meshes:
  - {ID: 1, Dimension: [10, 10, 10], LowerLeft: [-10, -10, -10], UpperRight: [10, 10, 10]}
Filters:
  - {ID: 1, Type: mesh, Bins: [1]}
  - {ID: 2, Type: meshsurface, Bins: [1]}
Tallies:
  - {ID: 1, Filters: [1], Scores: [total]}
  - {ID: 2, Filters: [2], Scores: [current]}
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		err = fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile)")
		return
	}
	return InputParameters.ReadFile(fileName)
}

// RunScenario builds the registry of ip, runs it and prints every tally to w.
// On cancellation the completed batches are still reported.
func RunScenario(ctx context.Context, ip *InputParameters.InputParameters, w io.Writer,
	maxRows int) (results []tally.Result, err error) {
	var (
		r     *tally.Registry
		st    *tally.Statistics
		start = time.Now()
	)
	if r, err = tally.Build(ip); err != nil {
		return
	}
	st, err = simulation.Run(ctx, ip.Settings, r)
	if st == nil {
		return
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return
	}
	slog.Info("run finished", "realizations", st.Realizations, "elapsed", time.Since(start),
		"memory", utils.GetMemUsage())
	results = st.Results()
	for i := range results {
		results[i].Print(w, maxRows)
	}
	return
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	var (
		level = slog.LevelInfo
	)
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})).
		With("run", uuid.NewString())
}

// serveMetrics exposes /metrics until the returned stop is called
func serveMetrics(addr string) (stop func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server", "addr", addr, "error", err)
		}
	}()
	slog.Info("serving metrics", "addr", addr)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
