package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"voiceq/internal/banner"
	"voiceq/internal/channel"
	"voiceq/internal/logging"
	"voiceq/internal/runner"
	"voiceq/internal/storage"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "voiceq",
	Short: "VoiceQ - command-test harness for voice assistants",
	Long: `
VoiceQ drives a voice-controlled accessibility assistant over its command
channel and checks that every spoken command maps to the right UI action.

  suite    run the built-in (or a YAML) table of commands and score replies
  load     simulate many concurrent clients and report latency/throughput
  dummy    run a stub assistant to test against
  history  list stored runs`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		logging.Init(os.Stderr, viper.GetString("log-level"))
		return nil
	},
}

func Execute() {
	// Custom Help with Banner
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Println(banner.GetString())
		cmd.Usage()
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(suiteCmd, loadCmd, dummyCmd, historyCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.voiceq.yaml)")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.StringP("url", "u", "ws://localhost:5000/ws", "Service URL (ws://host/ws or http://host)")
	pf.StringP("transport", "t", "ws", "Command channel transport: ws or http")
	pf.String("text-key", "", "Payload key for the command text (default text for ws, command for http)")
	pf.String("event-command", channel.DefaultEvents.Command, "Outbound command event name")
	pf.String("event-action", channel.DefaultEvents.Action, "Inbound action event name")
	pf.String("event-error", channel.DefaultEvents.Error, "Inbound error event name")
	pf.Duration("timeout", runner.DefaultConfig().Timeout, "Per-command reply timeout")
	pf.String("cases", "", "YAML file with test cases and/or a command pool")
	pf.String("history-db", "", "Run history database (default is $HOME/.voiceq/history.db)")
	pf.Bool("no-history", false, "Do not record this run in the history database")

	viper.BindPFlags(pf)
	viper.BindPFlag("events.command", pf.Lookup("event-command"))
	viper.BindPFlag("events.action", pf.Lookup("event-action"))
	viper.BindPFlag("events.error", pf.Lookup("event-error"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".voiceq")
		}
	}
	viper.SetEnvPrefix("VOICEQ")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logging.Logger.Debug("using config file", "path", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		logging.Logger.Warn("could not read config file", "path", cfgFile, "error", err)
	}
}

// loadConfig collects flags, env and config file into a runner.Config.
func loadConfig() runner.Config {
	cfg := runner.DefaultConfig()
	cfg.URL = viper.GetString("url")
	cfg.Transport = viper.GetString("transport")
	cfg.TextKey = viper.GetString("text-key")
	cfg.Events = channel.Events{
		Command: viper.GetString("events.command"),
		Action:  viper.GetString("events.action"),
		Error:   viper.GetString("events.error"),
	}
	cfg.Timeout = viper.GetDuration("timeout")

	if viper.IsSet("inter-test-delay") {
		cfg.InterTestDelay = viper.GetDuration("inter-test-delay")
	}
	if viper.IsSet("parallel") {
		cfg.Parallel = viper.GetBool("parallel")
	}
	if viper.IsSet("workers") {
		cfg.MaxWorkers = viper.GetInt("workers")
	}
	if viper.IsSet("commands-per-client") {
		cfg.CommandsPerClient = viper.GetInt("commands-per-client")
	}
	if viper.IsSet("stagger") {
		cfg.Stagger = viper.GetDuration("stagger")
	}
	if viper.IsSet("think-time") {
		cfg.ThinkTime = viper.GetDuration("think-time")
	}
	cfg.Seed = viper.GetInt64("seed")
	cfg.OutPrefix = viper.GetString("out-prefix")
	return cfg
}

// openHistory returns nil when history is disabled or unavailable; a broken
// history database never fails a run.
func openHistory() *storage.Store {
	if viper.GetBool("no-history") {
		return nil
	}
	path := viper.GetString("history-db")
	if path == "" {
		var err error
		if path, err = storage.DefaultPath(); err != nil {
			logging.Logger.Warn("history disabled", "error", err)
			return nil
		}
	}
	store, err := storage.Open(path)
	if err != nil {
		logging.Logger.Warn("history disabled", "error", err)
		return nil
	}
	return store
}

func recordHistory(item storage.HistoryItem) {
	store := openHistory()
	if store == nil {
		return
	}
	defer store.Close()
	if err := store.Save(item); err != nil {
		logging.Logger.Warn("could not save run to history", "error", err)
		return
	}
	logging.Logger.Debug("run saved to history", "id", item.ID, "path", store.Path())
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
