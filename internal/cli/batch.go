package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/veracitor/veracity/internal/pipeline"
	"github.com/veracitor/veracity/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze multiple targets from a manifest in parallel",
	Long: `Batch analyzes targets concurrently:
- Read targets from the manifest (one URL or file path per line)
- Analyze in parallel with a configurable worker count
- Write an individual JSON and Markdown report per target
- Print aggregate detection statistics at the end

Example:
  veracity batch targets.txt
  veracity batch targets.txt --concurrency 10 --output-dir ./reports
  veracity batch targets.txt --timeout 15m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./veracity-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	manifest := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Concurrency.Workers = concurrency

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}
	defer func() { _ = p.Close() }()

	fmt.Fprintf(os.Stderr, "Batch: %s (%d workers, output %s)\n\n", manifest, concurrency, outputDir)

	processor := worker.NewBatchProcessor(p, concurrency)
	results, err := processor.ProcessFile(ctx, manifest)
	if err != nil {
		return fmt.Errorf("process manifest: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)

	var failures int
	for _, result := range results {
		if result.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Target, result.Error)
			continue
		}

		slug := targetSlug(result.Target)
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(result.Record, jsonPath); err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: write JSON: %v\n", result.Target, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Record, mdPath); err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: write Markdown: %v\n", result.Target, err)
			continue
		}

		fmt.Fprintf(os.Stderr, "✓ %s: %s (score %.2f)\n", result.Target, result.Record.Verdict, result.Record.FusedScore)
	}

	stats := p.Stats()
	fmt.Fprintf(os.Stderr, "\nBatch complete: %d targets, %d failed\n", len(results), failures)
	fmt.Fprintf(os.Stderr, "  Verdicts:        %v\n", stats.ByVerdict)
	fmt.Fprintf(os.Stderr, "  Detection rate:  %.0f%%\n", stats.DetectionRate*100)
	fmt.Fprintf(os.Stderr, "  Mean score:      %.2f\n", stats.MeanScore)

	return nil
}

// targetSlug converts a target into a safe report filename
func targetSlug(target string) string {
	slug := target
	slug = strings.TrimPrefix(slug, "https://")
	slug = strings.TrimPrefix(slug, "http://")

	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", " ", "-",
	)
	slug = replacer.Replace(slug)
	slug = strings.Trim(slug, "._-")

	if len(slug) > 100 {
		slug = slug[:100]
	}
	if slug == "" {
		slug = "report"
	}
	return slug
}
