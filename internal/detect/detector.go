// Package detect defines the modality adapter contract and ships the
// deterministic baseline detectors. Real model inference lives behind
// the same contract in external services; the fusion engine only ever
// sees ModalityResult values.
package detect

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/veracitor/veracity/internal/model"
)

// ErrDetectorUnavailable indicates the detector could not run at all
// (missing dependency, closed backend). Mapped to available=false.
var ErrDetectorUnavailable = errors.New("detector unavailable")

// ErrDetectorTimeout indicates the detector did not settle before the
// analysis deadline. Treated identically to ErrDetectorUnavailable:
// missing evidence, never retried here.
var ErrDetectorTimeout = errors.New("detector timeout")

// Content is the input handed to every detector
type Content struct {
	Bytes     []byte
	SourceURL string // Empty for direct submissions
	Filename  string // Original filename when known
	MIME      string // Declared content type when known
}

// Detector is the contract every modality adapter satisfies
type Detector interface {
	// Modality identifies the evidence channel this detector serves.
	Modality() model.Modality

	// Detect analyzes the content and returns a risk-oriented score on
	// [0,1] with the detector's confidence. Failures are returned as
	// errors; the runner maps them to available=false.
	Detect(ctx context.Context, content Content) (model.ModalityResult, error)
}

// Runner invokes detectors concurrently under one deadline. Each
// detector is an independent, independently-failing call; any that has
// not settled by the deadline contributes a missing result.
type Runner struct {
	detectors  []Detector
	maxWorkers int
	timeout    time.Duration
}

// NewRunner creates a runner over the given detectors
func NewRunner(detectors []Detector, maxWorkers int, timeout time.Duration) *Runner {
	if maxWorkers <= 0 {
		maxWorkers = len(detectors)
	}
	return &Runner{detectors: detectors, maxWorkers: maxWorkers, timeout: timeout}
}

// Run executes all detectors in parallel and returns one ModalityResult
// per detector, in detector registration order. Timeout and explicit
// error are treated identically: available=false, no imputation.
func (r *Runner) Run(ctx context.Context, content Content) []model.ModalityResult {
	if len(r.detectors) == 0 {
		return nil
	}

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	results := make([]model.ModalityResult, len(r.detectors))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, r.maxWorkers)

	for i, d := range r.detectors {
		wg.Add(1)
		go func(idx int, det Detector) {
			defer wg.Done()

			select {
			case <-runCtx.Done():
				results[idx] = missingResult(det.Modality(), ErrDetectorTimeout)
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			res, err := det.Detect(runCtx, content)
			if err != nil {
				if runCtx.Err() != nil {
					err = ErrDetectorTimeout
				}
				results[idx] = missingResult(det.Modality(), err)
				return
			}
			res.Modality = det.Modality()
			res.Available = true
			results[idx] = res
		}(i, d)
	}

	wg.Wait()
	return results
}

func missingResult(m model.Modality, err error) model.ModalityResult {
	return model.ModalityResult{
		Modality:  m,
		Available: false,
		Error:     err.Error(),
	}
}
