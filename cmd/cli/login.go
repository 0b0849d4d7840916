package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sigil-io/agent/internal/agent"
	"github.com/sigil-io/agent/internal/common"
	"github.com/sigil-io/agent/internal/flow"
	"github.com/sigil-io/agent/internal/models"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in through the browser",
	Long: `Opens the browser on the provider's login page and waits for the
session to land back on the agent.

Extra request parameters can be passed through, for example:

  sigil login --provider google
  sigil login --param redirectToOpener=true`,
	PreRunE: ensureAgentE,
	RunE:    runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {

	// Set up signal handling for graceful cancellation
	ctx, cleanup := common.WithInterrupt(cmd.Context())
	defer cleanup()

	defer stopLocalAgent()

	params, err := collectLoginParams(cmd)
	if err != nil {
		return err
	}

	if manager == nil {
		return runRemoteLogin(ctx, cmd, params)
	}

	op, err := manager.Login(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to launch the login request: %w", err)
	}

	fmt.Println("Opening your browser to sign in...")

	err = awaitSpinner(ctx, "Waiting for the login to complete", func(ctx context.Context) error {
		_, err := op.Await(ctx)
		return err
	})
	if err != nil {
		return loginFailure(ctx, err)
	}

	fmt.Println()
	fmt.Println(successStyle.Render("Login successful!"))

	status := manager.Status()
	if len(status.PublicKey) > 0 {
		fmt.Printf("Session key: %s\n", shortKey(status.PublicKey))
	}
	fmt.Println()

	return nil
}

// runRemoteLogin drives a login against an already-running agent. The
// redirect lands on the agent's callback page, so completion is observed
// through its counters rather than an in-process operation.
func runRemoteLogin(ctx context.Context, cmd *cobra.Command, params models.Params) error {

	client := newAgentClient(cfg)

	before, err := client.Metrics(ctx)
	if err != nil {
		return err
	}

	controller, err := flow.NewController(cfg.GetAuthBaseUrl(), cfg.GetInitParams())
	if err != nil {
		return err
	}

	requestUrl, err := controller.BuildRequestUrl(flow.PathLogin, params, nil)
	if err != nil {
		return err
	}

	fmt.Println("Opening your browser to sign in...")

	if err := agent.BrowserLauncher().OpenURL(requestUrl); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	err = awaitSpinner(ctx, "Waiting for the login to complete", func(ctx context.Context) error {
		return client.AwaitCallback(ctx, before.CallbackRequests)
	})
	if err != nil {
		return loginFailure(ctx, err)
	}

	status, err := client.Status(ctx)
	if err != nil {
		return err
	}
	if !status.Active {
		return fmt.Errorf("the agent handled a response but no session is active")
	}

	fmt.Println()
	fmt.Println(successStyle.Render("Login successful!"))
	fmt.Printf("Session key: %s\n", shortKey(status.PublicKey))
	fmt.Println()

	return nil
}

func loginFailure(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("login cancelled")
	}
	if errors.Is(err, models.ErrCancelled) {
		return fmt.Errorf("login cancelled in the browser")
	}

	var providerErr *models.ProviderError
	if errors.As(err, &providerErr) {
		fmt.Println()
		fmt.Println(errorStyle.Render("The provider refused the login"))
		return providerErr
	}

	return fmt.Errorf("login failed: %w", err)
}

// collectLoginParams folds the login flags into a request parameter bag
func collectLoginParams(cmd *cobra.Command) (models.Params, error) {
	params := models.Params{}

	provider, err := cmd.Flags().GetString("provider")
	if err == nil && len(provider) > 0 {
		params.SetKeyWithValue("loginProvider", provider)
	}

	pairs, err := cmd.Flags().GetStringArray("param")
	if err != nil {
		return params, nil
	}

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || len(key) == 0 {
			return nil, fmt.Errorf("invalid --param %q: expected key=value", pair)
		}
		params.SetKeyWithValue(key, value)
	}

	return params, nil
}

func shortKey(publicKey string) string {
	if len(publicKey) <= 16 {
		return publicKey
	}
	return publicKey[:8] + "..." + publicKey[len(publicKey)-8:]
}

// stopLocalAgent shuts down a web service started for this command,
// waiting for background work so session state lands before exit
func stopLocalAgent() {
	if localServer == nil {
		return
	}
	if manager != nil {
		manager.Wait()
	}
	localServer.Stop()
}

func init() {
	// Add the command to the root
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().String("provider", "", "Ask the provider to start with a specific login method")
	loginCmd.Flags().StringArray("param", nil, "Extra request parameter as key=value (repeatable)")
}
