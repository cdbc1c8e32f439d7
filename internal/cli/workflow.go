package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewWorkflowCmd создаёт группу команд для ad-hoc workflows.
func NewWorkflowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Validate and execute workflows",
	}

	cmd.AddCommand(
		newWorkflowValidateCmd(clientFn, outputFn),
		newWorkflowExecuteCmd(clientFn, outputFn),
	)

	return cmd
}

// readSteps читает JSON-массив шагов из файла (или stdin при "-").
func readSteps(path string) (json.RawMessage, error) {
	var data []byte
	var err error

	if path == "-" {
		data, err = os.ReadFile("/dev/stdin")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read steps file: %w", err)
	}

	// Проверяем, что это валидный JSON-массив, до отправки на сервер
	var probe []json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("steps file must contain a JSON array: %w", err)
	}

	return data, nil
}

func newWorkflowValidateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "validate STEPS_FILE",
		Short: "Validate workflow step dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			steps, err := readSteps(args[0])
			if err != nil {
				return err
			}

			result, err := client.ValidateWorkflow(steps)
			if err != nil {
				return err
			}

			if !result.Valid {
				out.Error(result.Error)
			}

			out.Print(
				[]string{"VALID", "NODES", "EDGES", "ORDER"},
				[][]string{{
					strconv.FormatBool(result.Valid),
					strconv.Itoa(result.NodeCount),
					strconv.Itoa(result.EdgeCount),
					strings.Join(result.Order, " -> "),
				}},
				result,
			)

			if !result.Valid {
				return fmt.Errorf("workflow is invalid")
			}
			return nil
		},
	}
}

func newWorkflowExecuteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var workflowID string
	var agentID string

	cmd := &cobra.Command{
		Use:   "execute STEPS_FILE",
		Short: "Execute a workflow and wait for completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			steps, err := readSteps(args[0])
			if err != nil {
				return err
			}

			result, err := client.ExecuteWorkflow(ExecuteWorkflowRequest{
				WorkflowID: workflowID,
				AgentID:    agentID,
				Steps:      steps,
			})
			if err != nil {
				return err
			}

			printExecution(out, result)

			if !result.Success {
				return fmt.Errorf("workflow failed: %s", result.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&workflowID, "workflow-id", "", "Workflow identifier (required)")
	cmd.Flags().StringVar(&agentID, "agent-id", "", "Agent to execute skills as")
	cmd.MarkFlagRequired("workflow-id")

	return cmd
}

// printExecution выводит итог выполнения workflow.
func printExecution(out *Output, result *ExecutionResponse) {
	out.Print(
		[]string{"SUCCESS", "RECORD_ID", "ROLLED_BACK", "DURATION_SEC", "ERROR"},
		[][]string{{
			strconv.FormatBool(result.Success),
			result.RecordID,
			strconv.FormatBool(result.RolledBack),
			fmt.Sprintf("%.2f", result.DurationSeconds),
			result.Error,
		}},
		result,
	)
}
