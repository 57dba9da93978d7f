package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/samrosenbaum/v0-cracker-sub007/internal/compare"
	"github.com/samrosenbaum/v0-cracker-sub007/internal/consistency"
	"github.com/samrosenbaum/v0-cracker-sub007/internal/model"
	"github.com/samrosenbaum/v0-cracker-sub007/internal/store"
	"github.com/spf13/cobra"
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare <statements.json> <statement-id-a> <statement-id-b>",
	Short: "Compare two statements from the same person",
	Long: `Compare diffs two statements claim by claim and reports:
- consistency score (matching claims over the union of claims)
- credibility impact (contradictions weigh against, new detail for)
- contradicting, new, and omitted claims
- key differences, most significant first

The two statements must belong to the same person.

Example:
  cracker compare ./cases/doe-2021/statements.json 4f1c... 9a2e...`,
	Args: cobra.ExactArgs(3),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	statements, err := store.LoadStatementsFile(args[0])
	if err != nil {
		return err
	}

	engine := consistency.NewEngine(statements, compare.NewComparer(), model.CacheConfig{})

	result, err := engine.CompareStatements(context.Background(), args[1], args[2])
	if err != nil {
		return err
	}

	return printJSON(result)
}

// printJSON renders a result as indented JSON on stdout
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
