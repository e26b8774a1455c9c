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
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/notargets/meshtally/InputParameters"
	"github.com/notargets/meshtally/tally"
)

// CheckCmd represents the check command
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a scenario and print the bin space of its tallies",
	Long: `
Parses, validates and builds every mesh, filter and tally of a scenario
without running any histories. All configuration errors are reported at once.

meshtally check -I scenario.yaml`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			ip       *InputParameters.InputParameters
			fileName string
		)
		if fileName, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			return
		}
		if ip, err = processInput(fileName); err != nil {
			return
		}
		return CheckScenario(ip, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(CheckCmd)
	CheckCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML scenario file")
}

func CheckScenario(ip *InputParameters.InputParameters, w io.Writer) (err error) {
	var (
		r     *tally.Registry
		total int
	)
	if r, err = tally.Build(ip); err != nil {
		return
	}
	for _, m := range r.Meshes {
		fmt.Fprintf(w, "Mesh[%d] %s shape %v, %d bins\n", m.ID(), m.Type(), m.Shape(), m.BinCount())
	}
	for _, t := range r.Tallies {
		fmt.Fprintln(w, t.Describe())
		total += t.Size()
	}
	fmt.Fprintf(w, "%d accumulator entries\n", total)
	return
}
