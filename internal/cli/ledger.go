package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/nextaction/internal/ports/primary"
	"github.com/example/nextaction/internal/wire"
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Manage contexts (@calls, @computer, ...)",
}

var contextListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.LedgerAdapter().ListContexts(cmd.Context())
	},
}

var contextCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a context (the @ prefix is added if missing)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.LedgerAdapter().CreateContext(cmd.Context(), args[0])
	},
}

var contextDeleteCmd = &cobra.Command{
	Use:   "delete [context-id]",
	Short: "Delete a context no task refers to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.LedgerAdapter().DeleteContext(cmd.Context(), args[0])
	},
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, _ := cmd.Flags().GetString("client")
		return wire.LedgerAdapter().ListProjects(cmd.Context(), clientID)
	},
}

var projectCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		status, _ := cmd.Flags().GetString("status")
		clientID, _ := cmd.Flags().GetString("client")
		start, _ := cmd.Flags().GetString("start")
		due, _ := cmd.Flags().GetString("due")

		loc := wire.Location()
		startDate, err := parseDate(start, loc)
		if err != nil {
			return err
		}
		dueDate, err := parseDate(due, loc)
		if err != nil {
			return err
		}

		return wire.LedgerAdapter().CreateProject(cmd.Context(), primary.CreateProjectRequest{
			Name:        args[0],
			Description: description,
			Status:      status,
			ClientID:    clientID,
			StartDate:   startDate,
			DueDate:     dueDate,
		})
	},
}

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Manage clients",
}

var clientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.LedgerAdapter().ListClients(cmd.Context())
	},
}

var clientCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		notes, _ := cmd.Flags().GetString("notes")
		return wire.LedgerAdapter().CreateClient(cmd.Context(), primary.CreateClientRequest{
			Name:  args[0],
			Email: email,
			Notes: notes,
		})
	},
}

var clientArchiveCmd = &cobra.Command{
	Use:   "archive [client-id]",
	Short: "Archive a client with no active projects",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.LedgerAdapter().ArchiveClient(cmd.Context(), args[0])
	},
}

var priorityCmd = &cobra.Command{
	Use:   "priority",
	Short: "Manage priorities",
}

var priorityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List priorities by rank",
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.LedgerAdapter().ListPriorities(cmd.Context())
	},
}

var priorityCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a priority ranked after the existing ones",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.LedgerAdapter().CreatePriority(cmd.Context(), args[0])
	},
}

func init() {
	contextCmd.AddCommand(contextListCmd)
	contextCmd.AddCommand(contextCreateCmd)
	contextCmd.AddCommand(contextDeleteCmd)

	projectListCmd.Flags().String("client", "", "Filter by client ID")
	projectCreateCmd.Flags().StringP("description", "d", "", "Project description")
	projectCreateCmd.Flags().StringP("status", "s", "", "Status (defaults to Active)")
	projectCreateCmd.Flags().String("client", "", "Client ID (defaults to Default Client)")
	projectCreateCmd.Flags().String("start", "", "Start date")
	projectCreateCmd.Flags().String("due", "", "Due date")
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectCreateCmd)

	clientCreateCmd.Flags().String("email", "", "Contact email")
	clientCreateCmd.Flags().String("notes", "", "Notes")
	clientCmd.AddCommand(clientListCmd)
	clientCmd.AddCommand(clientCreateCmd)
	clientCmd.AddCommand(clientArchiveCmd)

	priorityCmd.AddCommand(priorityListCmd)
	priorityCmd.AddCommand(priorityCreateCmd)
}

// ContextCmd returns the context command
func ContextCmd() *cobra.Command {
	return contextCmd
}

// ProjectCmd returns the project command
func ProjectCmd() *cobra.Command {
	return projectCmd
}

// ClientCmd returns the client command
func ClientCmd() *cobra.Command {
	return clientCmd
}

// PriorityCmd returns the priority command
func PriorityCmd() *cobra.Command {
	return priorityCmd
}
