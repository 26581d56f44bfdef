package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewRunsCmd создаёт группу команд для просмотра архива запусков.
func NewRunsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect archived runs",
	}

	cmd.AddCommand(
		newRunsListCmd(clientFn, outputFn),
		newRunsShowCmd(clientFn, outputFn),
		newRunsStepsCmd(clientFn, outputFn),
	)

	return cmd
}

func newRunsListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var workflowName string
	var failed bool
	var limit int
	var offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			runs, err := client.ListRuns(ListRunsOpts{
				Workflow: workflowName,
				Failed:   failed,
				Limit:    limit,
				Offset:   offset,
			})
			if err != nil {
				return err
			}

			headers := []string{"ID", "WORKFLOW", "STATUS", "STEPS", "TIME", "CREATED"}
			rows := make([][]string, len(runs))
			for i, r := range runs {
				rows[i] = []string{
					r.ID,
					r.Workflow,
					runStatus(r.Success),
					fmt.Sprintf("%d/%d", r.ExecutedSteps, r.TotalSteps),
					formatSeconds(r.TotalTimeSec),
					r.CreatedAt,
				}
			}

			out.Print(headers, rows, runs)
			return nil
		},
	}

	cmd.Flags().StringVar(&workflowName, "workflow", "", "Filter by workflow name")
	cmd.Flags().BoolVar(&failed, "failed", false, "Show only failed runs")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of results to skip")

	return cmd
}

func newRunsShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show run details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			run, err := client.GetRun(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "WORKFLOW", "STATUS", "SUCCEEDED", "FAILED", "SKIPPED", "TIME", "STARTED"},
				[][]string{{
					run.ID,
					run.Workflow,
					runStatus(run.Success),
					strconv.Itoa(run.Succeeded),
					strconv.Itoa(run.Failed),
					strconv.Itoa(run.Skipped),
					formatSeconds(run.TotalTimeSec),
					run.StartedAt,
				}},
				run,
			)
			return nil
		},
	}
}

func newRunsStepsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "steps RUN_ID",
		Short: "List steps of an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			steps, err := client.ListRunSteps(args[0])
			if err != nil {
				return err
			}

			headers := []string{"POS", "NAME", "STATUS", "ATTEMPTS", "TIME", "MESSAGE"}
			rows := make([][]string, len(steps))
			for i, s := range steps {
				rows[i] = []string{
					strconv.Itoa(s.Position),
					s.Name,
					stepStatus(s),
					strconv.Itoa(s.Attempts),
					formatSeconds(s.TimeTakenSec),
					s.Message,
				}
			}

			out.Print(headers, rows, steps)
			return nil
		},
	}
}

// NewStatsCmd создаёт команду сводки по архиву запусков.
func NewStatsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show archive statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			stats, err := client.GetStats()
			if err != nil {
				return err
			}

			out.Print(
				[]string{"RUNS", "SUCCEEDED", "FAILED", "WORKFLOWS", "STEPS", "AVG_TIME"},
				[][]string{{
					strconv.FormatInt(stats.TotalRuns, 10),
					strconv.FormatInt(stats.Succeeded, 10),
					strconv.FormatInt(stats.Failed, 10),
					strconv.FormatInt(stats.Workflows, 10),
					strconv.FormatInt(stats.TotalSteps, 10),
					formatSeconds(stats.AvgTimeSec),
				}},
				stats,
			)
			return nil
		},
	}
}

// runStatus возвращает словесный статус запуска для таблиц.
func runStatus(success bool) string {
	if success {
		return "succeeded"
	}
	return "failed"
}

// stepStatus возвращает словесный статус шага из флагов ответа.
func stepStatus(s StepResponse) string {
	switch {
	case s.Skipped:
		return "skipped"
	case s.Success:
		return "succeeded"
	default:
		return "failed"
	}
}

// formatSeconds форматирует длительность в секундах для таблиц.
func formatSeconds(sec float64) string {
	return fmt.Sprintf("%.2fs", sec)
}
