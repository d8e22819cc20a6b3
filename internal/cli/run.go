package cli

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fknop/hermes/optimizer"
)

var (
	runProblemPath   string
	runProblemFormat string
	runParamsPath    string
	runMaxIterations int
	runMaxDuration   time.Duration
	runWorkers       int
	runSeed          int64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Solve a vehicle routing problem and print the best solution found",
	Run: func(cmd *cobra.Command, args []string) {
		problem, err := loadProblem(runProblemPath, runProblemFormat)
		if err != nil {
			logrus.Fatalf("loading problem: %v", err)
		}

		bundle := optimizer.DefaultParamsBundle()
		if runParamsPath != "" {
			bundle, err = optimizer.LoadParamsBundle(runParamsPath)
			if err != nil {
				logrus.Fatalf("loading solver params: %v", err)
			}
		}
		if err := bundle.Validate(); err != nil {
			logrus.Fatalf("invalid solver params: %v", err)
		}

		params := bundle.ToSolverParams()
		if runMaxIterations > 0 {
			params.MaxIterations = runMaxIterations
		}
		if runMaxDuration > 0 {
			params.MaxDuration = runMaxDuration
		}
		if runWorkers > 0 {
			params.Workers = runWorkers
		}
		if cmd.Flags().Changed("seed") {
			params.Seed = runSeed
		}

		logrus.Infof("solving with %d services, %d shipments, %d vehicles (workers=%d, seed=%d)",
			problem.NumServices(), problem.NumShipments(), problem.NumVehicles(), params.Workers, params.Seed)

		solver := optimizer.NewSolver(problem, params, optimizer.NewDefaultConstraintSet())
		report := solver.Run(optimizer.Budget{MaxIterations: params.MaxIterations, MaxDuration: params.MaxDuration})

		if report.Best == nil {
			logrus.Warn("no feasible or infeasible solution was ever accepted")
			return
		}
		fmt.Printf("iterations: %d\n", report.Iterations)
		fmt.Printf("duration: %s\n", report.Duration)
		fmt.Printf("cancelled: %v\n", report.Cancelled)
		fmt.Printf("best score: %s\n", report.Best.Score)
		fmt.Printf("population size: %d\n", len(report.Population))
	},
}

func init() {
	runCmd.Flags().StringVarP(&runProblemPath, "problem", "p", "", "Path to the problem file")
	runCmd.Flags().StringVar(&runProblemFormat, "format", "json", "Problem file format (json or solomon)")
	runCmd.Flags().StringVar(&runParamsPath, "params", "", "Path to a solver params YAML file (defaults built in if omitted)")
	runCmd.Flags().IntVar(&runMaxIterations, "max-iterations", 0, "Override max_iterations from the params file")
	runCmd.Flags().DurationVar(&runMaxDuration, "max-duration", 0, "Override max_duration from the params file")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "Override workers from the params file")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "Override seed from the params file")
	runCmd.MarkFlagRequired("problem")
}
