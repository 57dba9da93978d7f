package cli

import (
	"context"
	"fmt"

	"github.com/samrosenbaum/v0-cracker-sub007/internal/compare"
	"github.com/samrosenbaum/v0-cracker-sub007/internal/consistency"
	"github.com/samrosenbaum/v0-cracker-sub007/internal/model"
	"github.com/samrosenbaum/v0-cracker-sub007/internal/store"
	"github.com/spf13/cobra"
)

var (
	evolutionCase   string
	evolutionEntity string
	evolutionTopic  string
)

// evolutionCmd represents the evolution command
var evolutionCmd = &cobra.Command{
	Use:   "evolution <statements.json>",
	Short: "Track how a person's account of a topic changed over time",
	Long: `Evolution follows one person's statements on a topic in timestamp
order, comparing each version with its immediate predecessor:
- has_contradictions flags any adjacent contradiction on the topic
- drift_score accumulates adjacent change, normalized by version count

Example:
  cracker evolution ./cases/doe-2021/statements.json \
    --case doe-2021 --entity "Jane Doe" --topic whereabouts`,
	Args: cobra.ExactArgs(1),
	RunE: runEvolution,
}

func init() {
	rootCmd.AddCommand(evolutionCmd)

	evolutionCmd.Flags().StringVar(&evolutionCase, "case", "", "case id")
	evolutionCmd.Flags().StringVar(&evolutionEntity, "entity", "", "person whose account to track")
	evolutionCmd.Flags().StringVar(&evolutionTopic, "topic", "", "claim topic to track")
	_ = evolutionCmd.MarkFlagRequired("case")
	_ = evolutionCmd.MarkFlagRequired("entity")
	_ = evolutionCmd.MarkFlagRequired("topic")
}

func runEvolution(cmd *cobra.Command, args []string) error {
	statements, err := store.LoadStatementsFile(args[0])
	if err != nil {
		return err
	}

	engine := consistency.NewEngine(statements, compare.NewComparer(), model.CacheConfig{})

	evolution, err := engine.TrackClaimEvolution(context.Background(), evolutionCase, evolutionEntity, evolutionTopic)
	if err != nil {
		return fmt.Errorf("track evolution: %w", err)
	}

	return printJSON(evolution)
}
