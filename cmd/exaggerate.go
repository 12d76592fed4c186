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
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gocaricature/InputParameters"
	"github.com/notargets/gocaricature/caricature"
)

const (
	minAdvisedBeta = 0.
	maxAdvisedBeta = 2.
)

type Exaggeration struct {
	SrcFile, RefFile string
	OutDir           string
	ICFile           string // Optional YAML parameters file
	ProfileDir       string // CPU profile output, no profiling when empty
	Verbose          bool
	Params           *InputParameters.CaricatureParameters
}

// ExaggerateCmd represents the exaggerate command
var ExaggerateCmd = &cobra.Command{
	Use:   "exaggerate",
	Short: "Exaggerate a source mesh relative to a reference mesh",
	Long: `
Reads the source and reference meshes (.obj, .stl or .msh), which must share
face connectivity, and writes the exaggerated source into the output
directory.

gocaricature exaggerate --src face.obj --ref mean.obj --outdir out --beta 0.3`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			ex  *Exaggeration
			err error
		)
		if ex, err = processInput(cmd); err == nil {
			var outPath string
			if outPath, err = RunExaggerate(ex); err == nil {
				fmt.Println(outPath)
				return
			}
		}
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(ExaggerateCmd)
	ip := InputParameters.NewCaricatureParameters()
	ExaggerateCmd.Flags().StringP("src", "s", "", "source mesh (.obj, .stl or .msh)")
	ExaggerateCmd.Flags().StringP("ref", "r", "", "reference mesh (.obj, .stl or .msh) with the same faces as the source")
	ExaggerateCmd.Flags().StringP("outdir", "o", "", "directory for the output mesh")
	ExaggerateCmd.Flags().StringP("inputParametersFile", "I", "", "YAML file for parameters like:\n\t- Beta\n\t- Solver\n\t- Rings")
	ExaggerateCmd.Flags().Float64P("beta", "b", ip.Beta, "exaggeration strength, zero reproduces the source")
	ExaggerateCmd.Flags().String("solver", ip.Solver, "linear solver: ldlt or cg")
	ExaggerateCmd.Flags().Int("rings", ip.Rings, "mesh rings in the curvature fit")
	ExaggerateCmd.Flags().Int("neighbors", ip.Neighbors, "nearest vertices in the curvature fit, overrides rings when positive")
	ExaggerateCmd.Flags().String("profile", "", "write a CPU profile into this directory")
	ExaggerateCmd.Flags().BoolP("verbose", "v", false, "log progress")
	for _, key := range []string{"beta", "solver", "rings", "neighbors"} {
		if err := viper.BindPFlag(key, ExaggerateCmd.Flags().Lookup(key)); err != nil {
			panic(err)
		}
	}
}

func processInput(cmd *cobra.Command) (ex *Exaggeration, err error) {
	ex = &Exaggeration{}
	ex.SrcFile, _ = cmd.Flags().GetString("src")
	ex.RefFile, _ = cmd.Flags().GetString("ref")
	ex.OutDir, _ = cmd.Flags().GetString("outdir")
	ex.ICFile, _ = cmd.Flags().GetString("inputParametersFile")
	ex.ProfileDir, _ = cmd.Flags().GetString("profile")
	ex.Verbose, _ = cmd.Flags().GetBool("verbose")
	if len(ex.SrcFile) == 0 || len(ex.RefFile) == 0 || len(ex.OutDir) == 0 {
		err = fmt.Errorf("must supply --src, --ref and --outdir")
		return
	}
	ex.Params = InputParameters.NewCaricatureParameters()
	if len(ex.ICFile) != 0 {
		var data []byte
		if data, err = os.ReadFile(ex.ICFile); err != nil {
			return
		}
		if err = ex.Params.Parse(data); err != nil {
			return
		}
	}
	// flags and the config file override the parameters file
	if viper.IsSet("beta") {
		ex.Params.Beta = viper.GetFloat64("beta")
	}
	if viper.IsSet("solver") {
		ex.Params.Solver = viper.GetString("solver")
	}
	if viper.IsSet("rings") {
		ex.Params.Rings = viper.GetInt("rings")
	}
	if viper.IsSet("neighbors") {
		ex.Params.Neighbors = viper.GetInt("neighbors")
	}
	return
}

// RunExaggerate runs one exaggeration and returns the path written
func RunExaggerate(ex *Exaggeration) (outPath string, err error) {
	var (
		cfg caricature.Config
		ip  = ex.Params
	)
	if ip == nil {
		ip = InputParameters.NewCaricatureParameters()
	}
	if cfg, err = ip.Config(); err != nil {
		return
	}
	if ex.ProfileDir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(ex.ProfileDir), profile.Quiet).Stop()
	}
	if ip.Beta < minAdvisedBeta || ip.Beta > maxAdvisedBeta {
		log.Printf("warning: beta = %g is outside [%g, %g], the result may be distorted",
			ip.Beta, minAdvisedBeta, maxAdvisedBeta)
	}
	if ex.Verbose {
		ip.Print()
		cfg.Logger = log.Default()
	}
	if err = os.MkdirAll(ex.OutDir, 0755); err != nil {
		return
	}
	outPath = filepath.Join(ex.OutDir, ip.Output)
	start := time.Now()
	if _, err = caricature.ExaggerateFiles(ex.SrcFile, ex.RefFile, outPath, ip.Beta, cfg); err != nil {
		return "", err
	}
	if ex.Verbose {
		log.Printf("Wrote %s in %v", outPath, time.Since(start))
	}
	return
}
