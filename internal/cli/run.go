package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mansurdincer/loomsched/internal/config"
	"github.com/mansurdincer/loomsched/internal/domain"
	"github.com/mansurdincer/loomsched/internal/infra/observability"
	"github.com/mansurdincer/loomsched/internal/infra/sqlite"
	"github.com/mansurdincer/loomsched/internal/ingest"
	"github.com/mansurdincer/loomsched/internal/pipeline"
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("test", false, "use reduced population/generations for a fast smoke run")
	runCmd.Flags().String("config", "", "path to a TOML run configuration file")
	runCmd.Flags().String("db", "", "optional SQLite file to persist the run's result")
}

var runCmd = &cobra.Command{
	Use:   "run INPUT",
	Short: "Ingest a work-order file and search for a machine schedule",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	testMode, _ := cmd.Flags().GetBool("test")
	configPath, _ := cmd.Flags().GetString("config")
	dbPath, _ := cmd.Flags().GetString("db")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if testMode {
		cfg = cfg.ApplyTestMode()
	}

	start := time.Now()
	result, err := executeRun(cmd.Context(), inputPath, cfg)
	elapsed := time.Since(start)
	if err != nil {
		observability.RunsTotal.WithLabelValues("error").Inc()
		return err
	}
	observability.RunsTotal.WithLabelValues("ok").Inc()
	observability.RunDuration.Observe(elapsed.Seconds())

	if dbPath != "" {
		db, err := sqlite.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()
		if err := db.SaveRun(result); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "run %s: makespan %s across %d machines, %d generations, %d setup changes, %s meters scheduled (%s)\n",
		result.RunID,
		domain.HumanHours(maxMachineHours(result.Stats.MachineLoads)),
		cfg.Machines,
		len(result.Stats.Generations),
		result.Stats.TypeChanges.Variant+result.Stats.TypeChanges.Ulak+result.Stats.TypeChanges.Team,
		humanize.Comma(int64(totalQuantity(result.Schedules))),
		humanize.Time(result.CreatedAt),
	)
	return nil
}

func totalQuantity(schedules []domain.MachineSchedule) float64 {
	total := 0.0
	for _, s := range schedules {
		for _, item := range s.Items {
			total += item.QuantityMeters
		}
	}
	return total
}

// executeRun reads orders from inputPath and runs the full
// ingest -> search -> analyze pipeline, assembling the persisted/served
// RunResult.
func executeRun(ctx context.Context, inputPath string, cfg domain.RunConfig) (domain.RunResult, error) {
	reader := ingest.NewCSVReader()
	orders, err := reader.ReadOrders(ctx, inputPath)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("read orders: %w", err)
	}
	return pipeline.RunFromOrders(orders, cfg)
}

func maxMachineHours(loads []domain.MachineLoad) float64 {
	max := 0.0
	for _, l := range loads {
		if l.TotalHours > max {
			max = l.TotalHours
		}
	}
	return max
}
