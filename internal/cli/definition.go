package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewDefinitionCmd создаёт группу команд для сохранённых определений.
func NewDefinitionCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "definition",
		Aliases: []string{"def"},
		Short:   "Manage stored workflow definitions",
	}

	cmd.AddCommand(
		newDefinitionListCmd(clientFn, outputFn),
		newDefinitionCreateCmd(clientFn, outputFn),
		newDefinitionShowCmd(clientFn, outputFn),
		newDefinitionDeleteCmd(clientFn, outputFn),
		newDefinitionEnableCmd(clientFn, outputFn),
		newDefinitionDisableCmd(clientFn, outputFn),
		newDefinitionRunCmd(clientFn, outputFn),
	)

	return cmd
}

func definitionRow(def DefinitionResponse) []string {
	return []string{
		def.ID,
		def.Name,
		strconv.Itoa(len(def.Steps)),
		def.Schedule,
		strconv.FormatBool(def.IsActive),
		def.CreatedAt,
	}
}

var definitionHeaders = []string{"ID", "NAME", "STEPS", "SCHEDULE", "ACTIVE", "CREATED_AT"}

func newDefinitionListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List workflow definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			defs, err := client.ListDefinitions()
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(defs))
			for _, def := range defs {
				rows = append(rows, definitionRow(def))
			}

			out.Print(definitionHeaders, rows, defs)
			return nil
		},
	}
}

func newDefinitionCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string
	var file string
	var schedule string
	var agentID string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a workflow definition from a steps file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			steps, err := readSteps(file)
			if err != nil {
				return err
			}

			def, err := client.CreateDefinition(CreateDefinitionRequest{
				Name:     name,
				AgentID:  agentID,
				Steps:    steps,
				Schedule: schedule,
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Definition %q created: %s", def.Name, def.ID))
			out.Print(definitionHeaders, [][]string{definitionRow(*def)}, def)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Definition name (required)")
	cmd.Flags().StringVar(&file, "file", "", "Path to steps JSON file (required)")
	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron expression for scheduled execution")
	cmd.Flags().StringVar(&agentID, "agent-id", "", "Agent to execute skills as")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newDefinitionShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a workflow definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			def, err := client.GetDefinition(args[0])
			if err != nil {
				return err
			}

			out.Print(definitionHeaders, [][]string{definitionRow(*def)}, def)
			return nil
		},
	}
}

func newDefinitionDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a workflow definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteDefinition(args[0]); err != nil {
				return err
			}

			out.Success("Definition deleted: " + args[0])
			return nil
		},
	}
}

func newDefinitionEnableCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "enable ID",
		Short: "Enable a workflow definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setDefinitionActive(clientFn(), outputFn(), args[0], true)
		},
	}
}

func newDefinitionDisableCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "disable ID",
		Short: "Disable a workflow definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setDefinitionActive(clientFn(), outputFn(), args[0], false)
		},
	}
}

func setDefinitionActive(client *Client, out *Output, id string, active bool) error {
	def, err := client.SetDefinitionActive(id, active)
	if err != nil {
		return err
	}

	state := "disabled"
	if def.IsActive {
		state = "enabled"
	}
	out.Success(fmt.Sprintf("Definition %q %s", def.Name, state))
	out.Print(definitionHeaders, [][]string{definitionRow(*def)}, def)
	return nil
}

func newDefinitionRunCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "run ID",
		Short: "Execute a stored definition and wait for completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			result, err := client.ExecuteDefinition(args[0])
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
}
