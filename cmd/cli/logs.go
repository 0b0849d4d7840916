package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent events from the running agent",
	RunE: func(cmd *cobra.Command, args []string) error {

		client := newAgentClient(cfg)
		ctx := cmd.Context()

		if !client.Healthy(ctx) {
			return fmt.Errorf("no agent is running on %s", cfg.GetLocalServerUrl())
		}

		events, err := client.Logs(ctx)
		if err != nil {
			return err
		}

		if len(events) == 0 {
			fmt.Println(infoStyle.Render("No events recorded yet"))
			return nil
		}

		for _, event := range events {
			timestamp := event.Time.Format("15:04:05")

			level := event.Level.String()
			switch event.Level {
			case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
				level = errorStyle.Render(level)
			case logrus.WarnLevel:
				level = warningStyle.Render(level)
			default:
				level = infoStyle.Render(level)
			}

			fmt.Printf("%s  %s  %s\n", timestamp, level, event.Message)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
}
