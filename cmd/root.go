package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "termchat",
	Short: "TermChat — Terminal AI assistant powered by OpenRouter",
	Long: `TermChat — a terminal AI assistant.

Streams replies from any OpenRouter model, renders markdown answers and
shows the separate "reasoning" channel some models emit while thinking.

Setup:
  export OPENROUTER_API_KEY=sk-or-...    # required
  export DEFAULT_MODEL=openai/gpt-4o     # optional

Slash commands inside the chat:
  /help     show help
  /model    change the AI model
  /clear    clear conversation history
  /quit     exit`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
