package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sigil-io/agent/internal/agent"
	"github.com/sigil-io/agent/internal/common"
	"github.com/sigil-io/agent/internal/config"
	"github.com/sigil-io/agent/internal/daemon"
	"github.com/sigil-io/agent/internal/models"
	"github.com/sigil-io/agent/internal/sessions"
)

// Global configuration instance
var cfg *config.Config

// When a command runs the web service in process these hold the live
// pieces; against an already-running agent the commands go over HTTP
// and both stay nil.
var manager *sessions.Manager
var localServer *daemon.Server

// loadConfig loads the configuration based on the --config flag or default locations
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, err := cmd.Flags().GetString("config")

	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	return config.Load(configFile)
}

func preRunConfigE(cmd *cobra.Command, _ []string) error {
	// Load configuration before any command runs
	var err error
	cfg, err = loadConfig(cmd)

	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// check if verbose flag is set
	verbose, err := cmd.Flags().GetBool("verbose")
	if err == nil && verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	// Get the network override from the flag
	network, err := cmd.Flags().GetString("network")
	if err == nil && len(network) > 0 {
		parsed, err := models.ParseNetwork(network)
		if err != nil {
			return err
		}
		cfg.Provider.Network = string(parsed)
	}

	ephemeral, err := cmd.Flags().GetBool("ephemeral")
	if err == nil && ephemeral {
		cfg.Keystore.Ephemeral = true
	}

	// Timeout accepts Go style and ISO 8601 durations
	timeout, err := cmd.Flags().GetString("timeout")
	if err == nil && len(timeout) > 0 {
		parsed, err := common.ParseDuration(timeout)
		if err != nil {
			return err
		}
		if parsed <= 0 {
			return fmt.Errorf("timeout must be positive: %s", timeout)
		}
		cfg.Provider.Timeout = parsed
	}

	return nil
}

// ensureAgentE connects the command to a running agent, or starts the
// web service in process when none is listening.
func ensureAgentE(cmd *cobra.Command, _ []string) error {

	client := newAgentClient(cfg)

	// An agent bound to the configured port answers the health probe;
	// a service install is not required for that
	if client.Healthy(cmd.Context()) {
		logrus.Debugln("Agent already running, connecting to it...")
		return nil
	}

	fmt.Println("Agent not running, starting local web service...")

	server, err := agent.StartWebService(cfg)
	if err != nil {
		return fmt.Errorf("failed to start the web service: %w", err)
	}

	localServer = server
	manager = server.GetManager()

	return nil
}

// confirmed resolves interactive confirmations, honoring the --yes flag
func confirmed(cmd *cobra.Command, title, description string) (bool, error) {

	yes, err := cmd.Flags().GetBool("yes")
	if err == nil && yes {
		return true, nil
	}

	var answer bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Value(&answer),
		),
	)

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("prompt cancelled: %w", err)
	}

	return answer, nil
}

// promptAndLogin prompts the user if they want to login and handles the login process
func promptAndLogin(cmd *cobra.Command) error {
	fmt.Println()
	fmt.Println(titleStyle.Render("Authentication Required"))
	fmt.Println("No active login session found.")
	fmt.Println()

	shouldLogin, err := confirmed(cmd,
		"Would you like to login now?",
		"This will open your browser to sign in with the session provider")
	if err != nil {
		return err
	}

	if !shouldLogin {
		return fmt.Errorf("authentication required but login was declined")
	}

	fmt.Println()
	fmt.Println("Starting login process...")

	if err := ensureAgentE(cmd, nil); err != nil {
		return err
	}

	return runLogin(cmd, []string{})
}

var rootCmd = &cobra.Command{
	Use:   "sigil",
	Short: "Sigil Agent - browser based login sessions for the command line",
	Long: `Sigil Agent keeps a provider login session on this machine.

Logins run through the browser: the provider hands the session back to a
redirect page served by a local web service, and the agent persists and
authorizes it from there. Commands talk to a running agent when one is
listening, and otherwise run the web service in process for as long as
they need it.`,
	PersistentPreRunE: preRunConfigE,
	RunE: func(cmd *cobra.Command, args []string) error {

		// With no subcommand, show the session and offer to login
		status, source, err := currentStatus(cmd)
		if err != nil {
			return err
		}

		if status.Active {
			renderStatus(status, source)
			return nil
		}

		return promptAndLogin(cmd)
	},
}

func init() {

	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default is $HOME/.config/sigil/config.yaml)")
	rootCmd.PersistentFlags().String("network", "", "Override the configured network (mainnet, testnet or cyan)")
	rootCmd.PersistentFlags().Bool("ephemeral", false, "Keep session material in memory only")
	rootCmd.PersistentFlags().String("timeout", "", "Override how long to wait on the provider (e.g. 45s or PT45S)")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "Assume yes for interactive prompts")
}

func GetCommandOptions() *cobra.Command {
	return rootCmd
}
