package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/verdict-cli/api/schemas"
	"github.com/xkilldash9x/verdict-cli/internal/hydration"
	"github.com/xkilldash9x/verdict-cli/internal/observability"
	"github.com/xkilldash9x/verdict-cli/internal/parsers"
)

var (
	hydratePayloadPath string
	hydrateService     string
	hydrateTaskID      string
	hydrateTools       []string
)

var hydrateCmd = &cobra.Command{
	Use:   "hydrate",
	Short: "Fetch externally stored issue lists for a category's tools.",
	Long: `Hydrate finds every tool summary in a category whose issue list is empty
while the backend reports issues and an external SARIF artifact, then fetches
the extended results for each and prints the hydrated findings. Tools whose
artifacts were never inlined by the backend are reported as failed, which is
non-fatal.`,
	RunE: runHydrate,
}

func init() {
	hydrateCmd.Flags().StringVarP(&hydratePayloadPath, "payload", "p", "", "path to the task payload JSON (required)")
	hydrateCmd.Flags().StringVarP(&hydrateService, "service", "s", "", "analysis category (required)")
	hydrateCmd.Flags().StringVar(&hydrateTaskID, "task", "", "task id override (defaults to the payload's id)")
	hydrateCmd.Flags().StringSliceVarP(&hydrateTools, "tool", "t", nil, "tools to hydrate (default: every eligible tool)")
	_ = hydrateCmd.MarkFlagRequired("payload")
	_ = hydrateCmd.MarkFlagRequired("service")
	rootCmd.AddCommand(hydrateCmd)
}

func runHydrate(cmd *cobra.Command, args []string) error {
	logger := observability.GetLogger()
	task, err := loadTaskPayload(hydratePayloadPath)
	if err != nil {
		return err
	}
	taskID := hydrateTaskID
	if taskID == "" {
		taskID = task.ID
	}
	if taskID == "" {
		return fmt.Errorf("no task id: payload carries none and --task was not given")
	}

	category := schemas.Category(hydrateService)
	parser := parsers.ForTask(category, task)
	tools := hydrateTools
	if len(tools) == 0 {
		if tools, err = toolNames(parser, ""); err != nil {
			return err
		}
	}

	client := hydration.NewClient(cfg.API.BaseURL, cfg.API.Timeout, cfg.API.RequestsPerSecond, logger)
	defer client.Close()
	views := make([]*hydration.View, 0, len(tools))
	for _, tool := range tools {
		summary, err := parser.ToolData(tool)
		if err != nil {
			return err
		}
		if !summary.HydrationEligible() {
			logger.Debug("Skipping tool: not hydration-eligible", zap.String("tool", tool))
			continue
		}
		views = append(views, hydration.NewView(client, taskID, category, summary, logger))
	}
	if len(views) == 0 {
		cmd.Println("nothing to hydrate")
		return nil
	}

	// One request per eligible tool, fanned out; individual failures are
	// reported per view instead of aborting the group.
	g, ctx := errgroup.WithContext(cmd.Context())
	for _, view := range views {
		view := view
		g.Go(func() error {
			if _, err := view.Hydrate(ctx); err != nil {
				logger.Warn("Hydration error", zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, view := range views {
		summary := view.Summary()
		cmd.Printf("%s: %s\n", summary.Name, view.State())
		if view.State() == hydration.StateHydrated {
			printSummary(cmd, summary)
		}
	}
	return nil
}
