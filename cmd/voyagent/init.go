package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	initForce    bool
	initWithData bool
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a Voyagent project",
	Long: `Initialize a directory for use with Voyagent.

This command sets up everything needed to run Voyagent:
  - Creates the .voyagent directory for the eval history database
  - Creates a .voyagent.yaml configuration template
  - Optionally seeds starter flight and activity datasets

The directory argument is optional and defaults to the current directory.

Examples:
  voyagent init              # Initialize current directory
  voyagent init ./mytrip     # Initialize specific directory
  voyagent init --with-data  # Also create starter datasets`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Reinitialize even if already set up")
	initCmd.Flags().BoolVar(&initWithData, "with-data", false, "Create starter flight and activity datasets")
}

func runInit(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	absPath, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("resolving absolute path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", absPath, err)
	}

	fmt.Printf("Initializing Voyagent in %s...\n\n", absPath)

	voyagentDir := filepath.Join(absPath, ".voyagent")
	if _, err := os.Stat(voyagentDir); err == nil && !initForce {
		fmt.Printf("Directory already initialized. Use --force to reinitialize.\n")
		return nil
	}
	if err := os.MkdirAll(voyagentDir, 0755); err != nil {
		return fmt.Errorf("creating .voyagent directory: %w", err)
	}
	printStatus("✓", "Created .voyagent directory", color.FgGreen)

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		printStatus("⚠", "ANTHROPIC_API_KEY not set (the keyword parser will be used)", color.FgYellow)
	} else {
		printStatus("✓", "ANTHROPIC_API_KEY is set", color.FgGreen)
	}

	if err := createProjectConfig(absPath); err != nil {
		return fmt.Errorf("creating project config: %w", err)
	}
	printStatus("✓", "Created .voyagent.yaml template", color.FgGreen)

	if initWithData {
		if err := createStarterData(absPath); err != nil {
			return fmt.Errorf("creating starter datasets: %w", err)
		}
		printStatus("✓", "Created starter datasets in data/", color.FgGreen)
	}

	fmt.Printf("\n%s Voyagent initialization complete!\n\n", color.GreenString("✓"))
	fmt.Println("Next steps:")
	if apiKey == "" {
		fmt.Println("  1. Optionally set your API key for model-backed request parsing:")
		fmt.Println("     export ANTHROPIC_API_KEY=your-key-here")
		fmt.Println()
	}
	fmt.Println("  2. Plan a trip:")
	fmt.Println("     voyagent plan \"from Buenos Aires to Madrid, 3 days, $1500, museums\"")
	fmt.Println()
	fmt.Println("  3. Run the scenario suite:")
	fmt.Println("     voyagent eval")

	return nil
}

// createProjectConfig creates a .voyagent.yaml template.
func createProjectConfig(dir string) error {
	configPath := filepath.Join(dir, ".voyagent.yaml")
	if _, err := os.Stat(configPath); err == nil && !initForce {
		return nil
	}

	template := `# Voyagent project configuration
# This file overrides defaults from ~/.config/voyagent/config.yaml

data:
  flights_path: data/flights.csv
  activities_path: data/activities.csv
  watch: false

planner:
  currency: USD
  buffer_fraction: 0.10
  daily_capacity_hours: 10
  cluster_km: 3.0
  rating_weight: 0.4
  cost_weight: 0.4
  preference_weight: 0.2
  forecast_horizon_days: 14

providers:
  timeout: 20s
  max_attempts: 3
  backoff: 500ms
  plan_timeout: 2m

eval:
  history_path: .voyagent/eval.db
`
	return os.WriteFile(configPath, []byte(template), 0644)
}

// createStarterData writes small flight and activity CSVs so a fresh
// project can plan trips immediately.
func createStarterData(dir string) error {
	dataDir := filepath.Join(dir, "data")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}

	flights := `carrier,flight_number,origin,destination,date,price,currency,departure_time,arrival_time,duration_hours,stops
Iberia,IB6842,Buenos Aires,Madrid,2026-06-01,850,USD,08:30,23:45,12.25,0
Air Europa,UX042,Buenos Aires,Madrid,2026-06-01,640,USD,12:00,05:10,14.2,1
LATAM,LA8010,Buenos Aires,Barcelona,2026-06-01,780,USD,10:40,03:55,14.3,1
`
	activities := `name,city,lat,lon,category,cost,currency,duration_hours,rating,weather_tags
Prado Museum,Madrid,40.4138,-3.6921,museum,15,USD,3,4.8,any
Retiro Park,Madrid,40.4153,-3.6845,park,0,USD,2,4.6,sunny|cloudy
Tapas Tour,Madrid,40.4155,-3.7074,food,55,USD,3,4.7,any
Sagrada Familia,Barcelona,41.4036,2.1744,culture,26,USD,2,4.9,any
`

	flightsPath := filepath.Join(dataDir, "flights.csv")
	if _, err := os.Stat(flightsPath); os.IsNotExist(err) || initForce {
		if err := os.WriteFile(flightsPath, []byte(flights), 0644); err != nil {
			return err
		}
	}
	activitiesPath := filepath.Join(dataDir, "activities.csv")
	if _, err := os.Stat(activitiesPath); os.IsNotExist(err) || initForce {
		if err := os.WriteFile(activitiesPath, []byte(activities), 0644); err != nil {
			return err
		}
	}
	return nil
}

// printStatus prints a status message with a colored symbol.
func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}
