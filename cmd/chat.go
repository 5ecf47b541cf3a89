package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ragchat/src/core/chat"
	"ragchat/src/infrastructure/log"
)

const welcomeMessage = `Welcome! Ask me anything about the indexed documents.
The more detailed your question is, the better the answer. Type /quit to leave.`

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session in the terminal",
	Long: `The chat command runs the query loop against stdin/stdout: each answer is
printed token by token as the backend streams it.`,
	RunE: RunChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func RunChat(cmd *cobra.Command, args []string) error {
	c, err := buildComponents()
	if err != nil {
		return err
	}
	defer c.Close()

	session := chat.NewSession(c.retriever, c.generator, sessionOptions(), nil)

	fmt.Println(welcomeMessage)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" {
			break
		}
		if line == "" {
			continue
		}

		stream, err := session.Ask(cmd.Context(), line)
		if err != nil {
			fmt.Printf("could not answer that: %v\n", err)
			continue
		}

		if err := printStream(cmd.Context(), stream); err != nil {
			fmt.Printf("\nanswer failed: %v\n", err)
			continue
		}
		fmt.Println()
	}

	return scanner.Err()
}

// printStream writes increments to stdout as they arrive.
func printStream(ctx context.Context, stream *chat.Stream) error {
	defer stream.Cancel()

	for {
		select {
		case increment, ok := <-stream.Increments():
			if !ok {
				return stream.Err()
			}
			fmt.Print(increment)
		case <-ctx.Done():
			stream.Cancel()
			for range stream.Increments() {
			}
			log.Info("chat interrupted")
			return ctx.Err()
		}
	}
}
