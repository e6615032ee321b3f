package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"voiceq/internal/channel"
	"voiceq/internal/dummy"
	"voiceq/internal/logging"
)

var dummyCmd = &cobra.Command{
	Use:   "dummy",
	Short: "Run the stub assistant service",
	Long: `Serves a keyword-matching stub of the assistant: a websocket command
channel on /ws and POST /ai-intent. Unknown commands get an "unrecognized"
error; --silent never replies, for timeout testing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		srv := dummy.Start(dummy.ServerConfig{
			Port:          viper.GetInt("port"),
			Latency:       viper.GetDuration("latency"),
			Jitter:        viper.GetDuration("jitter"),
			Silent:        viper.GetBool("silent"),
			OmitRequestID: viper.GetBool("omit-request-id"),
			Events: channel.Events{
				Command: viper.GetString("events.command"),
				Action:  viper.GetString("events.action"),
				Error:   viper.GetString("events.error"),
			},
		})

		<-ctx.Done()
		logging.Logger.Info("stub assistant shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	f := dummyCmd.Flags()
	f.IntP("port", "p", 5000, "Port to run the stub on")
	f.Duration("latency", 0, "Base delay before each reply")
	f.Duration("jitter", 0, "Random extra delay up to this value")
	f.Bool("silent", false, "Accept commands but never reply")
	f.Bool("omit-request-id", false, "Leave request_id off replies")
}
