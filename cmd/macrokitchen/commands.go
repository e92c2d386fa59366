// cmd/macrokitchen/commands.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/nutrition"
	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/storage"
)

var bio nutrition.Biometrics

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Print daily calorie and protein targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		if bio.Age <= 0 || bio.WeightKg <= 0 || bio.HeightCm <= 0 {
			return fmt.Errorf("--age, --weight and --height must be positive")
		}
		d := nutrition.EstimateTargets(bio)
		meal := nutrition.TargetsFromDaily(d)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "BMR:             %.0f kcal\n", d.BMR)
		fmt.Fprintf(out, "TDEE:            %.0f kcal\n", d.TDEE)
		fmt.Fprintf(out, "Daily calories:  %d kcal\n", d.Calories)
		fmt.Fprintf(out, "Daily protein:   %d g\n", d.Protein)
		fmt.Fprintf(out, "Builder targets: %.0f kcal / %.0f g per meal\n", meal.Calories, meal.Protein)
		return nil
	},
}

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a catalog into the database (the embedded one by default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, err := storage.DefaultSeed()
		if seedFile != "" {
			data, rerr := os.ReadFile(seedFile)
			if rerr != nil {
				return fmt.Errorf("failed to read seed file: %w", rerr)
			}
			seed, err = storage.ParseSeed(data)
		}
		if err != nil {
			return err
		}

		stor, err := storage.NewSQLiteStorage(cfg.Database.Path, logger.Named("storage"))
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer stor.Close()

		return stor.Seed(context.Background(), seed)
	},
}

func init() {
	f := estimateCmd.Flags()
	f.Float64Var(&bio.Age, "age", 0, "Age in years")
	f.Float64Var(&bio.WeightKg, "weight", 0, "Weight in kg")
	f.Float64Var(&bio.HeightCm, "height", 0, "Height in cm")
	f.StringVar((*string)(&bio.Gender), "gender", string(nutrition.Male), "male or female")
	f.StringVar((*string)(&bio.Activity), "activity", string(nutrition.Moderate), "sedentary, light, moderate, active or very_active")
	f.StringVar((*string)(&bio.Goal), "goal", string(nutrition.GoalMaintain), "lose, maintain or gain")

	seedCmd.Flags().StringVar(&seedFile, "file", "", "YAML catalog to load instead of the embedded one")
	seedCmd.Flags().StringVar(&serveDBPath, "db-path", "", "Database path (overrides config)")
	seedCmd.PreRun = func(cmd *cobra.Command, args []string) {
		if serveDBPath != "" {
			cfg.Database.Path = serveDBPath
		}
	}
}
