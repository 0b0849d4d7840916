package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sigil-io/agent/internal/agent"
	"github.com/sigil-io/agent/internal/common"
	"github.com/sigil-io/agent/internal/flow"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and invalidate the session",
	Long: `Signs out through the browser and asks the session service to
invalidate the active session. Session state on this machine is cleared
once the provider acknowledges the logout.`,
	PreRunE: ensureAgentE,
	RunE:    runLogout,
}

func runLogout(cmd *cobra.Command, args []string) error {

	ctx, cleanup := common.WithInterrupt(cmd.Context())
	defer cleanup()

	defer stopLocalAgent()

	proceed, err := confirmed(cmd,
		"Sign out of the current session?",
		"This opens your browser and invalidates the session with the service")
	if err != nil {
		return err
	}
	if !proceed {
		fmt.Println("Logout aborted.")
		return nil
	}

	if manager == nil {
		return runRemoteLogout(ctx, cmd)
	}

	op, err := manager.Logout(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to launch the logout request: %w", err)
	}

	fmt.Println("Opening your browser to sign out...")

	err = awaitSpinner(ctx, "Waiting for the logout to complete", func(ctx context.Context) error {
		_, err := op.Await(ctx)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("logout cancelled")
		}
		return fmt.Errorf("logout failed: %w", err)
	}

	fmt.Println()
	fmt.Println(successStyle.Render("Logged out."))
	fmt.Println()

	return nil
}

// runRemoteLogout drives a logout against an already-running agent.
func runRemoteLogout(ctx context.Context, cmd *cobra.Command) error {

	client := newAgentClient(cfg)

	before, err := client.Metrics(ctx)
	if err != nil {
		return err
	}

	controller, err := flow.NewController(cfg.GetAuthBaseUrl(), cfg.GetInitParams())
	if err != nil {
		return err
	}

	requestUrl, err := controller.BuildRequestUrl(flow.PathLogout, nil, nil)
	if err != nil {
		return err
	}

	fmt.Println("Opening your browser to sign out...")

	if err := agent.BrowserLauncher().OpenURL(requestUrl); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	err = awaitSpinner(ctx, "Waiting for the logout to complete", func(ctx context.Context) error {
		return client.AwaitCallback(ctx, before.CallbackRequests)
	})
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("logout cancelled")
		}
		return fmt.Errorf("logout failed: %w", err)
	}

	status, err := client.Status(ctx)
	if err != nil {
		return err
	}
	if status.Active {
		return fmt.Errorf("the agent handled a response but the session is still active")
	}

	fmt.Println()
	fmt.Println(successStyle.Render("Logged out."))
	fmt.Println()

	return nil
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
