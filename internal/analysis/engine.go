// Package analysis hosts the evidence fusion engine: the single entry
// point that turns whatever modality results settled for a piece of
// content into a calibrated verdict, explanation, and tamper-evidence
// record.
package analysis

import (
	"errors"
	"fmt"
	"time"

	"github.com/veracitor/veracity/internal/chain"
	"github.com/veracitor/veracity/internal/explain"
	"github.com/veracitor/veracity/internal/fusion"
	"github.com/veracitor/veracity/internal/logging"
	"github.com/veracitor/veracity/internal/model"
)

// IncompleteRecordError reports a caller/integration bug: the supplied
// modality results cannot be assembled into a loss-free audit trail.
// Fatal — no verdict is produced.
type IncompleteRecordError struct {
	Identity string
	Modality model.Modality
	Reason   string
}

func (e *IncompleteRecordError) Error() string {
	return fmt.Sprintf("incomplete record for %q: modality %s: %s", e.Identity, e.Modality, e.Reason)
}

// Request carries one analysis: the content bytes, its logical identity,
// and whatever modality results settled before the caller's deadline.
type Request struct {
	Content  []byte
	Identity string
	Results  []model.ModalityResult

	// Extras are opaque collaborator objects passed through to the wire
	// record untouched.
	Extras model.Extras
}

// Engine combines the fingerprint ledger, normalizer, fusion, classifier
// and explainer behind one Analyze call. Fusion itself is pure and
// synchronous; only the ledger touches storage.
type Engine struct {
	ledger      *chain.Ledger
	normalizer  *fusion.Normalizer
	fuser       *fusion.Engine
	classifier  *fusion.Classifier
	explainer   *explain.Explainer
	accumulator Accumulator

	now func() time.Time
}

// NewEngine wires the engine from configuration. accumulator may be nil
// when no dashboard aggregation is wanted.
func NewEngine(cfg *model.Config, ledger *chain.Ledger, accumulator Accumulator) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}

	return &Engine{
		ledger:      ledger,
		normalizer:  fusion.NewNormalizer(cfg.Weights),
		fuser:       fusion.NewEngine(cfg.Thresholds.InsufficientEvidence),
		classifier:  fusion.NewClassifier(cfg.Thresholds),
		explainer:   explain.NewExplainer(),
		accumulator: accumulator,
		now:         time.Now,
	}, nil
}

// Analyze fingerprints the content, fuses the available modality
// signals, classifies, and assembles the externally visible record.
//
// InvalidSignalError and IncompleteRecordError are fatal: no verdict is
// returned, since false confidence is worse than explicit failure. A
// ChainIntegrityError is recovered: the verdict is produced with the
// modification status flagged unknown in the explanation.
func (e *Engine) Analyze(req Request) (*model.AnalysisRecord, error) {
	identity := req.Identity
	if identity == "" {
		identity = "sha256:" + chain.Digest(req.Content)
	}
	identity = chain.CanonicalIdentity(identity)

	if err := validateResults(identity, req.Results); err != nil {
		return nil, err
	}

	fingerprint, err := e.ledger.Fingerprint(req.Content, identity)
	chainWarn := false
	if err != nil {
		var integrityErr *chain.ChainIntegrityError
		if !errors.As(err, &integrityErr) {
			return nil, fmt.Errorf("fingerprint %q: %w", identity, err)
		}
		// History is corrupted, the current fingerprint still stands.
		chainWarn = true
		logging.Logger.Warn("fingerprint history unverifiable", "identity", identity, "err", integrityErr)
	}

	signals, err := e.normalizer.Normalize(req.Results)
	if err != nil {
		return nil, err
	}

	adultFlag := fusion.AdultFlag(req.Results)
	fused := e.fuser.Fuse(signals, adultFlag)
	verdict := e.classifier.Classify(fused, adultFlag)
	explanation := e.explainer.Explain(fused, verdict, req.Results, chainWarn)

	record := &model.AnalysisRecord{
		Identity:    identity,
		Verdict:     verdict,
		FusedScore:  fused.FusedScore,
		Confidence:  fused.Confidence,
		AdultFlag:   adultFlag,
		PerModality: req.Results,
		Fusion:      fused,
		Fingerprint: fingerprint,
		Explanation: explanation,
		Extras:      req.Extras,
		AnalyzedAt:  e.now().UTC(),
	}

	if e.accumulator != nil {
		e.accumulator.Record(verdict, fused.FusedScore)
	}

	return record, nil
}

// VerifyChain exposes custody chain verification for audit views.
func (e *Engine) VerifyChain(identity string) (bool, error) {
	return e.ledger.Verify(chain.CanonicalIdentity(identity))
}

// History exposes the full custody chain for an identity.
func (e *Engine) History(identity string) ([]model.FingerprintRecord, error) {
	return e.ledger.History(chain.CanonicalIdentity(identity))
}

// validateResults guards the audit trail: every result must carry a
// known modality and no modality may appear twice, so no detector's
// output can be silently dropped or double-counted.
func validateResults(identity string, results []model.ModalityResult) error {
	seen := make(map[model.Modality]bool, len(results))
	for _, r := range results {
		if r.Modality.Rank() >= len(model.Modalities) {
			return &IncompleteRecordError{Identity: identity, Modality: r.Modality, Reason: "unknown modality"}
		}
		if seen[r.Modality] {
			return &IncompleteRecordError{Identity: identity, Modality: r.Modality, Reason: "duplicate result"}
		}
		seen[r.Modality] = true
	}
	return nil
}
