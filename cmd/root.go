package main

import (
	"github.com/deepgram/minichat/internal/config"
	"github.com/deepgram/minichat/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configKey names the config file setting. It doubles as its environment
// variable, so a bare CONFIG in the environment is never picked up.
const configKey = "MINICHAT_CONFIG"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "minichat",
		Short:         "Send a message to a chat-completion API and print the answer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Init(viper.GetString(configKey)); err != nil {
				return err
			}
			logger.Setup(cmd.ErrOrStderr(), config.GetLogLevel(), true)
			return nil
		},
	}

	cmd.PersistentFlags().String("config", "", "Config file path (optional, or MINICHAT_CONFIG).")
	cmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn or error.")
	cmd.PersistentFlags().String("model", "", "Chat model (default gpt-4o-mini).")
	_ = viper.BindPFlag(configKey, cmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("LOG_LEVEL", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("OPENAI_MODEL", cmd.PersistentFlags().Lookup("model"))

	cmd.AddCommand(newAskCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newKnowledgeCmd())

	return cmd
}
