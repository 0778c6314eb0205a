// Package chain maintains the append-only content fingerprint chain used
// for tamper evidence. One record is appended per analyzed content
// instance; records are linked backward by digest and are never mutated
// or deleted — tamper detection is retroactive comparison.
package chain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/veracitor/veracity/internal/model"
)

// ChainIntegrityError reports that the stored fingerprint history for an
// identity is corrupted: a record's declared predecessor hash does not
// match the actual stored predecessor. This indicates external tampering
// with stored records, not with the content itself.
type ChainIntegrityError struct {
	Identity string
	Seq      int
	Reason   string
}

func (e *ChainIntegrityError) Error() string {
	return fmt.Sprintf("fingerprint chain for %q broken at seq %d: %s", e.Identity, e.Seq, e.Reason)
}

// Ledger computes content fingerprints and maintains per-identity custody
// chains on top of a Store. Appends for the same identity are serialized;
// different identities proceed fully in parallel.
type Ledger struct {
	store Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	now func() time.Time
}

// NewLedger creates a ledger over the given store
func NewLedger(store Store) *Ledger {
	return &Ledger{
		store: store,
		locks: make(map[string]*sync.Mutex),
		now:   time.Now,
	}
}

// Digest returns the hex SHA-256 digest of the content bytes
func Digest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// CanonicalIdentity normalizes a raw identity (typically a source URL)
// so repeated submissions of the same logical content share one chain.
func CanonicalIdentity(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return strings.TrimSpace(raw)
	}
	parsed.Fragment = ""
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	return parsed.String()
}

// Fingerprint computes the content digest and appends exactly one record
// to the identity's chain.
//
// When the stored history fails verification, the returned record is
// created against the current content only (modification unknown,
// IntegrityUnknown set) and a *ChainIntegrityError is returned alongside
// it — callers surface the error but may still produce a verdict.
func (l *Ledger) Fingerprint(content []byte, identity string) (*model.FingerprintRecord, error) {
	lock := l.identityLock(identity)
	lock.Lock()
	defer lock.Unlock()

	digest := Digest(content)

	records, err := l.store.LoadChain(identity)
	if err != nil {
		return nil, fmt.Errorf("load chain for %q: %w", identity, err)
	}

	if chainErr := verifyRecords(identity, records); chainErr != nil {
		rec := model.FingerprintRecord{
			Identity:         identity,
			Seq:              len(records),
			ContentHash:      digest,
			CreatedAt:        l.now().UTC(),
			IntegrityUnknown: true,
		}
		if len(records) > 0 {
			rec.PreviousHash = records[len(records)-1].ContentHash
		}
		if err := l.store.Append(rec); err != nil {
			return nil, fmt.Errorf("append record for %q: %w", identity, err)
		}
		return &rec, chainErr
	}

	rec := model.FingerprintRecord{
		Identity:    identity,
		Seq:         len(records),
		ContentHash: digest,
		CreatedAt:   l.now().UTC(),
	}
	if len(records) > 0 {
		prev := records[len(records)-1]
		rec.PreviousHash = prev.ContentHash
		rec.ModificationDetected = prev.ContentHash != digest
	}

	if err := l.store.Append(rec); err != nil {
		return nil, fmt.Errorf("append record for %q: %w", identity, err)
	}

	return &rec, nil
}

// Verify walks the identity's chain from the latest record backward and
// confirms each previous_hash matches the digest stored in the prior
// record. Returns true for an unbroken (or empty) chain; a broken link
// yields false and a *ChainIntegrityError.
func (l *Ledger) Verify(identity string) (bool, error) {
	records, err := l.store.LoadChain(identity)
	if err != nil {
		return false, fmt.Errorf("load chain for %q: %w", identity, err)
	}

	if chainErr := verifyRecords(identity, records); chainErr != nil {
		return false, chainErr
	}
	return true, nil
}

// History returns the identity's full custody chain, root first.
func (l *Ledger) History(identity string) ([]model.FingerprintRecord, error) {
	return l.store.LoadChain(identity)
}

func verifyRecords(identity string, records []model.FingerprintRecord) *ChainIntegrityError {
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		if i == 0 {
			if rec.PreviousHash != "" {
				return &ChainIntegrityError{Identity: identity, Seq: rec.Seq, Reason: "root record declares a predecessor"}
			}
			continue
		}
		if prev := records[i-1]; rec.PreviousHash != prev.ContentHash {
			return &ChainIntegrityError{
				Identity: identity,
				Seq:      rec.Seq,
				Reason:   fmt.Sprintf("previous_hash %s does not match stored predecessor digest %s", shortHash(rec.PreviousHash), shortHash(prev.ContentHash)),
			}
		}
	}
	return nil
}

func (l *Ledger) identityLock(identity string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[identity]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[identity] = lock
	}
	return lock
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	if h == "" {
		return "(empty)"
	}
	return h
}
