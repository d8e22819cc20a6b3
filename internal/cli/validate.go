package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fknop/hermes/optimizer"
)

var (
	validateProblemPath   string
	validateProblemFormat string
	validateParamsPath    string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate a problem and/or solver params file without solving",
	Run: func(cmd *cobra.Command, args []string) {
		if validateProblemPath != "" {
			problem, err := loadProblem(validateProblemPath, validateProblemFormat)
			if err != nil {
				logrus.Fatalf("invalid problem: %v", err)
			}
			fmt.Printf("problem OK: %d locations, %d services, %d shipments, %d vehicles\n",
				problem.NumLocations(), problem.NumServices(), problem.NumShipments(), problem.NumVehicles())
		}

		if validateParamsPath != "" {
			bundle, err := optimizer.LoadParamsBundle(validateParamsPath)
			if err != nil {
				logrus.Fatalf("invalid solver params: %v", err)
			}
			if err := bundle.Validate(); err != nil {
				logrus.Fatalf("invalid solver params: %v", err)
			}
			fmt.Println("solver params OK")
		}

		if validateProblemPath == "" && validateParamsPath == "" {
			logrus.Fatal("nothing to validate: pass --problem and/or --params")
		}
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateProblemPath, "problem", "p", "", "Path to a problem file to validate")
	validateCmd.Flags().StringVar(&validateProblemFormat, "format", "json", "Problem file format (json or solomon)")
	validateCmd.Flags().StringVar(&validateParamsPath, "params", "", "Path to a solver params YAML file to validate")
}
