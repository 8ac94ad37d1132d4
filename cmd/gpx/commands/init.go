package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/l3aro/go-path-explain/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize gpx configuration interactively",
	Long: `Guides you through setting up gpx configuration step by step.
Creates a config file with output, pruning and explanation cache settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

func runInit() error {
	cfg := config.DefaultConfig()

	var (
		output       = string(cfg.Output)
		maxSteps     = strconv.Itoa(cfg.MaxSteps)
		cacheSize    = strconv.Itoa(cfg.CacheSize)
		saveLocation string
	)

	// === SECTION 1: Output ===
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Output format").
				Description("How gpx explain prints notes").
				Options(
					huh.NewOption("Aligned text", string(config.OutputText)),
					huh.NewOption("JSON", string(config.OutputJSON)),
				).
				Value(&output),
			huh.NewConfirm().
				Title("Prune notes").
				Description("Drop notes that are not essential to the defect, such as branches on unrelated values").
				Affirmative("Yes").
				Negative("No").
				Value(&cfg.Prune),
			huh.NewInput().
				Title("Maximum notes per fixture (0 for no limit)").
				Placeholder("256").
				Validate(nonNegativeInt).
				Value(&maxSteps),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 2: Cache ===
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Explanation cache").
				Description("Reuse notes of fixtures that did not change since the last run").
				Affirmative("Enable").
				Negative("Disable").
				Value(&cfg.CacheEnabled),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	if cfg.CacheEnabled {
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Cache file").
					Placeholder(cfg.CachePath).
					Value(&cfg.CachePath),
				huh.NewInput().
					Title("Cache size (entries)").
					Placeholder("1024").
					Validate(nonNegativeInt).
					Value(&cacheSize),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
	}

	// === SECTION 3: Save location ===
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where should the config be saved?").
				Options(
					huh.NewOption("Project (./.gpx/config.yaml)", "project"),
					huh.NewOption("Global (~/.gpx/config.yaml)", "global"),
				).
				Value(&saveLocation),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	configPath := config.ProjectConfigFilePath()
	if saveLocation == "global" {
		configPath = config.GlobalConfigFilePath()
	}

	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config file exists").
					Description(fmt.Sprintf("Overwrite existing config at %s?", configPath)).
					Affirmative("Overwrite").
					Negative("Cancel").
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	// === Build config struct ===
	cfg.Output = config.OutputFormat(output)
	cfg.MaxSteps, _ = strconv.Atoi(maxSteps)
	if n, err := strconv.Atoi(cacheSize); err == nil && n > 0 {
		cfg.CacheSize = n
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	fmt.Println("\n=== Configuration Preview ===")
	fmt.Printf("Config path: %s\n", configPath)
	fmt.Printf("Output: %s\n", cfg.Output)
	fmt.Printf("Prune: %t\n", cfg.Prune)
	fmt.Printf("Max steps: %d\n", cfg.MaxSteps)
	if cfg.CacheEnabled {
		fmt.Printf("Cache: %s (%d entries)\n", cfg.CachePath, cfg.CacheSize)
	} else {
		fmt.Println("Cache: disabled")
	}
	fmt.Println("================================")

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Configuration saved to: %s\n", configPath)

	// Read it back the way explain will.
	if _, err := config.LoadFromFile(configPath); err != nil {
		return fmt.Errorf("loading saved config: %w", err)
	}

	fmt.Println("\n=== Initialization Complete ===")
	return nil
}

func nonNegativeInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("enter a non-negative number")
	}
	return nil
}

func init() {
	RootCmd.AddCommand(initCmd)
}
