package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ragchat",
	Short: "Conversational retrieval-augmented chat over a document corpus",
	Long: `ragchat answers questions from a pre-built document index: it retrieves
the most relevant fragments, assembles them with the running conversation
history into a prompt, and streams the generated answer back token by token
while keeping the session transcript.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	settingDefaultConfig()
}
