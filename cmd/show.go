package cmd

import (
	"fmt"
	"os"

	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/verdict-cli/api/schemas"
	"github.com/xkilldash9x/verdict-cli/internal/parsers"
)

var (
	showPayloadPath string
	showService     string
	showTool        string
	showDetailID    string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Render normalized findings for one analysis category.",
	Long: `Show loads a task payload from disk, runs the category's parser over it and
prints each tool's summary. With --tool the output narrows to one tool; with
--detail it prints the drill-down view for a single finding id.`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVarP(&showPayloadPath, "payload", "p", "", "path to the task payload JSON (required)")
	showCmd.Flags().StringVarP(&showService, "service", "s", "", "analysis category: static, dynamic, performance or ai (required)")
	showCmd.Flags().StringVarP(&showTool, "tool", "t", "", "narrow output to one tool")
	showCmd.Flags().StringVarP(&showDetailID, "detail", "d", "", "print the detail view for one finding id")
	_ = showCmd.MarkFlagRequired("payload")
	_ = showCmd.MarkFlagRequired("service")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	task, err := loadTaskPayload(showPayloadPath)
	if err != nil {
		return err
	}
	parser := parsers.ForTask(schemas.Category(showService), task)

	if showDetailID != "" {
		detail, err := parser.Detail(showDetailID)
		if err != nil {
			return err
		}
		printDetail(cmd, detail)
		return nil
	}

	tools, err := toolNames(parser, showTool)
	if err != nil {
		return err
	}
	for _, tool := range tools {
		summary, err := parser.ToolData(tool)
		if err != nil {
			return err
		}
		printSummary(cmd, summary)
	}
	return nil
}

// loadTaskPayload reads and decodes one task snapshot from disk.
func loadTaskPayload(path string) (schemas.TaskPayload, error) {
	var task schemas.TaskPayload
	data, err := os.ReadFile(path)
	if err != nil {
		return task, fmt.Errorf("read payload: %w", err)
	}
	if err := json.Unmarshal(data, &task); err != nil {
		return task, fmt.Errorf("decode payload: %w", err)
	}
	return task, nil
}

// toolNames lists a category's tools in payload order. The names come from
// the payload structure rather than from findings, so a tool whose issues
// only exist in an external artifact (nothing parsed locally yet) is still
// listed. An explicit tool short-circuits the scan.
func toolNames(parser parsers.Parser, explicit string) ([]string, error) {
	if explicit != "" {
		return []string{explicit}, nil
	}
	return parser.Tools()
}

func printSummary(cmd *cobra.Command, s schemas.ToolSummary) {
	cmd.Printf("== %s [%s]\n", s.Name, s.Category)
	if s.Status != "" {
		cmd.Printf("   status: %s\n", s.Status)
	}
	cmd.Printf("   issues: %d reported, %d loaded\n", s.TotalIssues, len(s.Issues))
	if s.ExecutionTime != "" {
		cmd.Printf("   execution time: %s\n", s.ExecutionTime)
	}
	if s.ExternalRef != "" {
		cmd.Printf("   external results: %s\n", s.ExternalRef)
	}
	for _, m := range s.Metrics {
		cmd.Printf("   metric %s = %s\n", m.Name, m.Value)
	}
	for _, f := range s.Issues {
		location := f.LocationString()
		if location != "" {
			location = " @ " + location
		}
		cmd.Printf("   [%s] %s: %s%s\n", f.Severity, f.ID, f.Message, location)
	}
}

func printDetail(cmd *cobra.Command, d schemas.DetailView) {
	cmd.Printf("%s\n%s\n", d.Title, d.Subtitle)
	cmd.Printf("severity: %s\n", d.Severity)
	if d.Location != "" {
		cmd.Printf("location: %s\n", d.Location)
	}
	cmd.Printf("\n%s\n", d.Description)
	if d.Code != "" {
		cmd.Printf("\n%s\n", d.Code)
	}
	if d.Remediation != "" {
		cmd.Printf("\nRemediation: %s\n", d.Remediation)
	}
}
