package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sigil-io/agent/internal/agent"
	"github.com/sigil-io/agent/internal/sessions"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the session state",
	Long: `Show whether a session is held and whether the session service has
authorized it. Reads from the running agent when one is listening, and
falls back to the persisted store otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, source, err := currentStatus(cmd)
		if err != nil {
			return err
		}

		renderStatus(status, source)
		return nil
	},
}

// currentStatus resolves the session state, preferring a running agent's
// live view over the persisted store.
func currentStatus(cmd *cobra.Command) (sessions.Status, string, error) {

	client := newAgentClient(cfg)
	ctx := cmd.Context()

	if client.Healthy(ctx) {
		status, err := client.Status(ctx)
		if err != nil {
			return sessions.Status{}, "", err
		}
		return status, "running agent", nil
	}

	status, err := agent.LoadStatus(cfg)
	if err != nil {
		return sessions.Status{}, "", err
	}
	return status, "persisted store", nil
}

func renderStatus(status sessions.Status, source string) {

	fmt.Println()
	fmt.Println(headerStyle.Render("Session Status"))
	fmt.Println()

	if !status.Active {
		fmt.Println("  " + warningStyle.Render("SIGNED OUT"))
		fmt.Println()
		fmt.Println("  Run 'sigil login' to establish a session.")
		fmt.Println()
		return
	}

	fmt.Println("  " + activeStyle.Render("ACTIVE"))

	if status.Authorized {
		fmt.Println("  " + successStyle.Render("Authorized by the session service"))
	} else {
		fmt.Println("  " + infoStyle.Render("Not authorized yet"))
	}

	if len(status.PublicKey) > 0 {
		fmt.Printf("  Session key: %s\n", shortKey(status.PublicKey))
	}

	fmt.Printf("  Source: %s\n", source)
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
