package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/samrosenbaum/v0-cracker-sub007/internal/batch"
	"github.com/samrosenbaum/v0-cracker-sub007/internal/extract"
	"github.com/samrosenbaum/v0-cracker-sub007/internal/model"
	"github.com/samrosenbaum/v0-cracker-sub007/internal/store"
	"github.com/spf13/cobra"
)

var (
	caseID        string
	batchSize     int
	concurrency   int
	itemTimeout   time.Duration
	maxRetries    int
	extractorName string
	llmModel      string
	outputPath    string
	pollInterval  time.Duration
	httpProxy     string
	httpsProxy    string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <case-dir>",
	Short: "Analyze a case directory's documents as one batch session",
	Long: `Batch analyzes every document in a case directory:
- Local files become documents in name order
- A sources.txt manifest (one URL per line) adds remote documents
- Documents are extracted into statements under a concurrency ceiling
- Progress is polled live; failed documents are retried then recorded
- Extracted statements are exported as JSON for the compare and
  evolution commands

Example:
  cracker batch ./cases/doe-2021
  cracker batch ./cases/doe-2021 --concurrency 10 --retries 1
  cracker batch ./cases/doe-2021 --extractor openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&caseID, "case", "", "case id (default: case directory name)")
	batchCmd.Flags().IntVar(&batchSize, "batch-size", 0, "documents per chunk (default from config)")
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "max simultaneous document analyses (default from config)")
	batchCmd.Flags().DurationVar(&itemTimeout, "item-timeout", 30*time.Second, "per-document extraction timeout")
	batchCmd.Flags().IntVar(&maxRetries, "retries", 2, "retries per document after the first attempt")
	batchCmd.Flags().StringVar(&extractorName, "extractor", "heuristic", "statement extractor (heuristic, openai)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "model name for LLM-backed extractors")
	batchCmd.Flags().StringVar(&outputPath, "output", "", "statements JSON output path (default: <case-dir>/statements.json)")
	batchCmd.Flags().DurationVar(&pollInterval, "poll", 200*time.Millisecond, "progress poll interval")
	batchCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	batchCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	caseDir := args[0]
	ctx := context.Background()

	// Build configuration
	cfg := model.DefaultConfig()
	cfg.Batch.ItemTimeout = itemTimeout
	cfg.Batch.MaxRetries = maxRetries
	cfg.HTTP.HTTPProxy = httpProxy
	cfg.HTTP.HTTPSProxy = httpsProxy
	cfg.Extractor.Provider = extractorName
	cfg.Extractor.Model = llmModel
	cfg.Output.Verbose = verbose

	if cfg.Extractor.Provider == "openai" {
		cfg.Extractor.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Extractor.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}

	if caseID == "" {
		caseID = filepath.Base(filepath.Clean(caseDir))
	}
	if outputPath == "" {
		outputPath = filepath.Join(caseDir, "statements.json")
	}

	extractor, err := extract.NewExtractor(cfg.Extractor)
	if err != nil {
		return fmt.Errorf("create extractor: %w", err)
	}

	fetcher := store.NewFetcher(cfg.HTTP, cfg.RateLimiting)
	documents := store.NewFSDocumentStore(caseDir, fetcher)
	statements := store.NewMemoryStatementStore()
	scheduler := batch.NewScheduler(documents, statements, extractor, cfg.Batch)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Cracker Batch Analysis\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Case:        %s\n", caseID)
	fmt.Fprintf(os.Stderr, "  Directory:   %s\n", caseDir)
	fmt.Fprintf(os.Stderr, "  Extractor:   %s\n", extractor.Name())
	fmt.Fprintf(os.Stderr, "\n")

	session, err := scheduler.CreateSession(ctx, batch.CreateSessionParams{
		CaseID:           caseID,
		BatchSize:        batchSize,
		ConcurrencyLimit: concurrency,
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	fmt.Fprintf(os.Stderr, "  Session:     %s\n", session.ID)
	fmt.Fprintf(os.Stderr, "  Documents:   %d\n", session.Progress.Total)
	fmt.Fprintf(os.Stderr, "  Workers:     %d\n", session.ConcurrencyLimit)
	fmt.Fprintf(os.Stderr, "\n")

	if !session.Status.IsTerminal() {
		if err := scheduler.StartProcessing(ctx, session.ID); err != nil {
			return fmt.Errorf("start session: %w", err)
		}

		// Poll: snapshots always reflect true counts while running
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()

		for range ticker.C {
			session, err = scheduler.GetSession(session.ID)
			if err != nil {
				return fmt.Errorf("poll session: %w", err)
			}

			fmt.Fprintf(os.Stderr, "\r⚙️  completed %d  failed %d  in-flight %d  of %d",
				session.Progress.Completed, session.Progress.Failed,
				session.Progress.InFlight, session.Progress.Total)

			if session.Status.IsTerminal() {
				break
			}
		}
		fmt.Fprintf(os.Stderr, "\n\n")
	}

	if err := scheduler.Close(ctx); err != nil {
		return fmt.Errorf("close scheduler: %w", err)
	}

	// Report per-document failures (soft failures: the session still
	// completed if any document succeeded)
	items, err := scheduler.WorkItems(session.ID)
	if err != nil {
		return fmt.Errorf("list work items: %w", err)
	}
	for _, item := range items {
		if item.LastError != "" {
			fmt.Fprintf(os.Stderr, "✗ %s (%d attempts): %s\n", item.Document.ID, item.Attempts, item.LastError)
		}
	}

	// Export extracted statements
	extracted, err := statements.ListByCase(ctx, caseID)
	if err != nil {
		return fmt.Errorf("collect statements: %w", err)
	}
	if err := store.WriteStatementsFile(outputPath, extracted); err != nil {
		return fmt.Errorf("export statements: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Session %s\n", session.Status)
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Documents:   %d\n", session.Progress.Total)
	fmt.Fprintf(os.Stderr, "  Completed:   %d\n", session.Progress.Completed)
	fmt.Fprintf(os.Stderr, "  Failed:      %d\n", session.Progress.Failed)
	fmt.Fprintf(os.Stderr, "  Statements:  %d -> %s\n", len(extracted), outputPath)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
