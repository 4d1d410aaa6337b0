package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/voyagent/voyagent/internal/eval"
)

var (
	evalScenario  string
	evalMode      string
	evalNoHistory bool
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Run the planning scenarios and report pass/fail",
	Long: `Eval replays the built-in trip-planning scenarios (plus any scenarios
file configured under eval.scenarios_path) against the pipeline and
checks that the expected providers were invoked and the expected
content appears in the rendered plan.

Use --mode baseline to run the sequential single-attempt planner
instead, for comparison against the full pipeline.`,
	RunE: runEval,
}

func init() {
	evalCmd.Flags().StringVar(&evalScenario, "scenario", "", "run a single scenario by ID or name")
	evalCmd.Flags().StringVar(&evalMode, "mode", string(eval.ModePipeline), "planner to evaluate (pipeline or baseline)")
	evalCmd.Flags().BoolVar(&evalNoHistory, "no-history", false, "skip recording results to the history store")
	evalCmd.Flags().StringVar(&configPath, "config", "", "path to a config file (default: search .voyagent.yaml)")
}

func runEval(cmd *cobra.Command, args []string) error {
	mode := eval.Mode(evalMode)
	if !mode.Valid() {
		return fmt.Errorf("unknown mode %q (want pipeline or baseline)", evalMode)
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	reg, _, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	scenarios := eval.BuiltinScenarios()
	if cfg.Eval.ScenariosPath != "" {
		extra, err := eval.LoadScenarios(cfg.Eval.ScenariosPath)
		if err != nil {
			return fmt.Errorf("load scenarios: %w", err)
		}
		scenarios = append(scenarios, extra...)
	}
	if evalScenario != "" {
		sc, err := eval.FindScenario(scenarios, evalScenario)
		if err != nil {
			return err
		}
		scenarios = []eval.Scenario{sc}
	}

	var store *eval.Store
	if !evalNoHistory {
		store, err = eval.OpenStore(cfg.Eval.HistoryPath)
		if err != nil {
			log.Printf("[eval] history store unavailable, continuing without it: %v", err)
		} else {
			defer store.Close()
		}
	}

	runner := eval.NewRunner(
		buildClassifier(cfg),
		buildSupervisor(cfg, reg, nil),
		eval.NewBaseline(reg),
		store,
	)

	results, summary, err := runner.Run(cmd.Context(), scenarios, mode)
	if err != nil {
		return err
	}
	eval.WriteReport(os.Stdout, results, summary)

	if summary.Passed < summary.Total {
		os.Exit(1)
	}
	return nil
}
