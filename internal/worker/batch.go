package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/veracitor/veracity/internal/model"
)

// Analyzer runs a full analysis for a single target. Implemented by
// the pipeline; abstracted here so batch logic is testable without it.
type Analyzer interface {
	AnalyzeURL(ctx context.Context, url string) (*model.AnalysisRecord, error)
	AnalyzeFile(ctx context.Context, path string) (*model.AnalysisRecord, error)
}

// AnalyzeJob analyzes one target, either a URL or a local path
type AnalyzeJob struct {
	Target   string
	Analyzer Analyzer
}

// Execute runs the analysis for the job's target
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	var record *model.AnalysisRecord
	var err error

	if isURL(j.Target) {
		record, err = j.Analyzer.AnalyzeURL(ctx, j.Target)
	} else {
		record, err = j.Analyzer.AnalyzeFile(ctx, j.Target)
	}

	return &AnalyzeResult{Target: j.Target, Record: record, Error: err}
}

// AnalyzeResult is the per-target outcome of a batch run
type AnalyzeResult struct {
	Target string
	Record *model.AnalysisRecord
	Error  error
}

// GetError returns the job error, if any
func (r *AnalyzeResult) GetError() error {
	return r.Error
}

// ctxJob runs the wrapped job under the caller's context so batch
// deadlines reach the analyses instead of the pool's own lifetime.
type ctxJob struct {
	ctx context.Context
	job Job
}

func (c *ctxJob) Execute(_ context.Context) Result {
	return c.job.Execute(c.ctx)
}

// BatchProcessor fans a list of targets out over a worker pool
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a batch processor with bounded concurrency
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// ProcessTargets analyzes all targets concurrently. Results arrive in
// completion order, one per target, failures included.
func (b *BatchProcessor) ProcessTargets(ctx context.Context, targets []string) []*AnalyzeResult {
	if len(targets) == 0 {
		return []*AnalyzeResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, target := range targets {
		pool.Submit(&ctxJob{ctx: ctx, job: &AnalyzeJob{Target: target, Analyzer: b.analyzer}})
	}

	raw := pool.Wait()

	results := make([]*AnalyzeResult, 0, len(raw))
	for _, r := range raw {
		if ar, ok := r.(*AnalyzeResult); ok {
			results = append(results, ar)
		}
	}

	return results
}

// ProcessFile reads targets from a manifest file and analyzes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, path string) ([]*AnalyzeResult, error) {
	targets, err := ReadTargets(path)
	if err != nil {
		return nil, fmt.Errorf("read targets: %w", err)
	}
	return b.ProcessTargets(ctx, targets), nil
}

// ReadTargets reads one target per line, skipping blanks, comments,
// and duplicates.
func ReadTargets(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer func() { _ = file.Close() }()

	var targets []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			targets = append(targets, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan manifest: %w", err)
	}

	return targets, nil
}

func isURL(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}
