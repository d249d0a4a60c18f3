package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/config"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/db"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/log"
)

const timeLayout = "2006-01-02 15:04"

var (
	tableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5b595c"))
	tableHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ab9df2")).Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	tableScoreStyle  = tableCellStyle.Align(lipgloss.Right)
)

func historyCmd(configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past optimization runs",
		Long: `List past optimization runs, newest first, with their status and best score.

Example:
  promptopt history --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, *configPath, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list (0 for all)")
	return cmd
}

// openDB opens the run history database named by the config file.
func openDB(configPath string) (*db.DB, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return db.New(cfg.DatabasePath)
}

func runHistory(cmd *cobra.Command, configPath string, limit int) error {
	database, err := openDB(configPath)
	if err != nil {
		return err
	}
	defer func() {
		log.CloseError("database", database.Close())
	}()

	runs, err := database.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs yet")
		return nil
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers("ID", "STATUS", "BEST", "ITER", "STARTED", "TOPIC").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case col == 2 || col == 3:
				return tableScoreStyle
			default:
				return tableCellStyle
			}
		})
	for _, run := range runs {
		t.Row(
			shortID(run.ID),
			fmt.Sprintf("%s %s", statusIcon(run.Status), run.Status),
			fmt.Sprintf("%.1f", run.BestScore),
			fmt.Sprintf("%d", run.Iterations),
			run.CreatedAt.Local().Format(timeLayout),
			truncate(run.Topic, 50),
		)
	}

	_, err = fmt.Fprintln(out, t.Render())
	return err
}

func statusIcon(status db.RunStatus) string {
	switch status {
	case db.RunCompleted:
		return "[x]"
	case db.RunRunning:
		return "[~]"
	case db.RunFailed:
		return "[!]"
	case db.RunCanceled:
		return "[-]"
	default:
		return "[ ]"
	}
}

// shortID returns the first eight characters of a run ID, enough for show.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// writeIndented writes text with every line prefixed.
func writeIndented(w io.Writer, prefix, text string) {
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		fmt.Fprintf(w, "%s%s\n", prefix, line)
	}
}
