package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voyagent/voyagent/internal/supervisor"
	"github.com/voyagent/voyagent/internal/tui"
)

var (
	planNoTUI bool
	planJSON  bool
)

var planCmd = &cobra.Command{
	Use:   "plan [query]",
	Short: "Plan a trip from a natural-language request",
	Long: `Plan runs the full pipeline for a single trip request: the query is
classified into a structured request, the flight, activity, weather and
budget providers are fanned out, and the results are consolidated into
a ranked, day-by-day itinerary.

Example:
  voyagent plan "from Buenos Aires to Madrid, 3 days, 2 people, $1500, museums"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().BoolVar(&planNoTUI, "no-tui", false, "print plain output instead of the progress view")
	planCmd.Flags().BoolVar(&planJSON, "json", false, "print the consolidated response as JSON")
	planCmd.Flags().StringVar(&configPath, "config", "", "path to a config file (default: search .voyagent.yaml)")
}

func runPlan(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	reg, catalog, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	stopWatch := startWatcher(cfg, catalog)
	defer stopWatch()

	classifier := buildClassifier(cfg)
	req, err := classifier.Classify(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("understand request: %w", err)
	}

	if planNoTUI || planJSON || !stdoutIsTerminal() {
		sup := buildSupervisor(cfg, reg, nil)
		resp, planErr := sup.Plan(cmd.Context(), req)
		if resp == nil {
			return planErr
		}
		if planJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return err
			}
		} else {
			fmt.Println(resp.Render())
		}
		if planErr != nil {
			fmt.Fprintf(os.Stderr, "plan completed with issues: %v\n", planErr)
		}
		return nil
	}

	emitter := supervisor.NewEventEmitter(64)
	sup := buildSupervisor(cfg, reg, emitter)

	program, progress := tui.NewProgram(req.Destination)
	go tui.Forward(program, emitter.Events())

	go func() {
		resp, planErr := sup.Plan(context.Background(), req)
		emitter.Close()
		program.Send(tui.PlanDoneMsg{Response: resp, Err: planErr})
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("progress view: %w", err)
	}

	if resp := progress.Response(); resp != nil {
		fmt.Println(resp.Render())
	}
	if planErr := progress.Err(); planErr != nil {
		fmt.Fprintf(os.Stderr, "plan completed with issues: %v\n", planErr)
	}
	return nil
}

func stdoutIsTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
