package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sigil-io/agent/internal/agent"
	"github.com/sigil-io/agent/internal/common"
)

// agentCmd represents the agent command
var agentCmd = &cobra.Command{
	Use:    "agent",
	Short:  "Run the Sigil Agent",
	Long:   `Start the Sigil Agent directly in the foreground. This runs the web service that catches login redirects and serves session state.`,
	Hidden: true,
	Run: func(cmd *cobra.Command, args []string) {
		// Check if configuration is loaded
		if cfg == nil {
			fmt.Println("Configuration not loaded")
			os.Exit(1)
		}

		fmt.Printf("Network: %s\n", cfg.GetNetwork())
		fmt.Printf("Provider: %s\n", cfg.GetAuthBaseUrl())
		fmt.Printf("Listen address: %s\n", cfg.GetServerAddress())

		// Set up signal handling for graceful shutdown
		sigChan, cleanup := common.NewInterruptChannel()
		defer cleanup()

		fmt.Println("Starting Sigil Agent...")

		server, err := agent.StartWebService(cfg)
		if err != nil {
			fmt.Printf("Agent failed to start: %v\n", err)
			os.Exit(1)
		}

		sig := <-sigChan
		fmt.Printf("\nReceived signal %v, shutting down gracefully...\n", sig)
		server.GetManager().Wait()
		server.Stop()
		fmt.Println("Agent stopped")
	},
}

func init() {
	rootCmd.AddCommand(agentCmd) // Run agent directly
}
