package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewRecordCmd создаёт группу команд для записей о выполнениях.
func NewRecordCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "record",
		Aliases: []string{"rec"},
		Short:   "Inspect workflow execution records",
	}

	cmd.AddCommand(
		newRecordListCmd(clientFn, outputFn),
		newRecordShowCmd(clientFn, outputFn),
	)

	return cmd
}

var recordHeaders = []string{"ID", "WORKFLOW_ID", "STATUS", "ROLLED_BACK", "DURATION_SEC", "STARTED_AT"}

func recordRow(rec RecordResponse) []string {
	return []string{
		rec.ID,
		rec.WorkflowID,
		rec.Status,
		strconv.FormatBool(rec.RollbackPerformed),
		fmt.Sprintf("%.2f", rec.DurationSeconds),
		rec.StartedAt,
	}
}

func newRecordListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var workflowID string
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List execution records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			records, err := client.ListRecords(ListRecordsOpts{
				WorkflowID: workflowID,
				Status:     status,
				Limit:      limit,
			})
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, recordRow(rec))
			}

			out.Print(recordHeaders, rows, records)
			return nil
		},
	}

	cmd.Flags().StringVar(&workflowID, "workflow-id", "", "Filter by workflow ID")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (PENDING, RUNNING, COMPLETED, FAILED)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of records")

	return cmd
}

func newRecordShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show an execution record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			rec, err := client.GetRecord(args[0])
			if err != nil {
				return err
			}

			headers := []string{"ID", "WORKFLOW_ID", "AGENT_ID", "VALIDATION", "STATUS", "ROLLED_BACK", "ERROR", "DURATION_SEC"}
			rows := [][]string{{
				rec.ID,
				rec.WorkflowID,
				rec.AgentID,
				rec.ValidationStatus,
				rec.Status,
				strconv.FormatBool(rec.RollbackPerformed),
				rec.Error,
				fmt.Sprintf("%.2f", rec.DurationSeconds),
			}}

			out.Print(headers, rows, rec)
			return nil
		},
	}
}
