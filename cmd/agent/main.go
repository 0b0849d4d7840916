package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sigil-io/agent/internal/agent"
	"github.com/sigil-io/agent/internal/common"
	"github.com/sigil-io/agent/internal/config"
)

var (
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "agent",
	Short: "Start the agent web service",
	Long: `Start the agent web service.

If no config file is specified, the agent will look for config files in the following locations:
  - ./config.yaml
  - ./config/config.yaml
  - /etc/sigil/config.yaml
  - ~/.config/sigil/config.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		// Load configuration
		cfg, err := config.Load(configFile)
		if err != nil {
			logrus.Fatalf("Failed to load configuration: %v", err)
		}

		server, err := agent.StartWebService(cfg)
		if err != nil {
			logrus.Fatalf("Failed to start web service: %v", err)
		}

		sigChan, cleanup := common.NewInterruptChannel()
		defer cleanup()

		sig := <-sigChan
		fmt.Printf("\nReceived signal %v, shutting down gracefully...\n", sig)
		server.GetManager().Wait()
		server.Stop()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to the configuration file (optional)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatalf("Failed to execute command: %v", err)
	}
}
