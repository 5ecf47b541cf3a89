package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"ragchat/src/core/chat"
	"ragchat/src/infrastructure/log"
)

type evaluationInput struct {
	Question string `json:"question"`
}

type evaluationResult struct {
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
	Error    string `json:"error,omitempty"`
}

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Run a batch of questions through the query loop",
	Long: `The evaluate command reads questions from a JSON file, answers each one
through the full retrieve-assemble-generate loop within a single session, and
writes the answers to an output JSON file for review.`,
	RunE: Evaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringP("input", "i", "", "Input JSON file path")
	evaluateCmd.MarkFlagRequired("input")
	evaluateCmd.Flags().StringP("output", "o", "answers.json", "Output JSON file path")
}

func Evaluate(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")

	jsonFile, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	var inputs []evaluationInput
	if err := json.Unmarshal(jsonFile, &inputs); err != nil {
		return fmt.Errorf("failed to parse input JSON: %w", err)
	}

	c, err := buildComponents()
	if err != nil {
		return err
	}
	defer c.Close()

	session := chat.NewSession(c.retriever, c.generator, sessionOptions(), nil)

	bar := progressbar.Default(int64(len(inputs)))
	results := make([]evaluationResult, 0, len(inputs))

	for _, input := range inputs {
		result := evaluationResult{Question: input.Question}

		stream, err := session.Ask(cmd.Context(), input.Question)
		if err != nil {
			result.Error = err.Error()
		} else {
			answer, err := stream.Text()
			if err != nil {
				result.Error = err.Error()
			} else {
				result.Answer = answer
			}
		}

		results = append(results, result)
		bar.Add(1)
	}

	encoded, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	if err := os.WriteFile(outputPath, encoded, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	log.Info("evaluation finished", "questions", len(inputs), "output", outputPath)
	return nil
}
