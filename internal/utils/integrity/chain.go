// Package integrity computes the tamper-evident hash chain over posted journal entries.
package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/temple_ledger/internal/core/domain"
)

// GenesisHash is the predecessor of the first entry in every temple's chain.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// HashedStatus is the status term written into every hash. The hash is frozen when the entry leaves
// DRAFT, so later CANCELLED or REVERSED transitions keep the original hash.
const HashedStatus = domain.Posted

// CanonicalPayload serialises the hashed fields of an entry followed by the previous hash.
func CanonicalPayload(e domain.JournalEntry, prevHash string) string {
	parts := []string{
		strconv.FormatInt(e.EntryID, 10),
		e.EntryNumber,
		e.TotalAmount.StringFixed(2),
		e.Narration,
		string(HashedStatus),
		e.EntryDate.UTC().Format(domain.DateLayout),
		e.CreatedBy,
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
		prevHash,
	}
	return strings.Join(parts, "|")
}

// ComputeHash returns the lowercase hex SHA-256 of the canonical payload.
func ComputeHash(e domain.JournalEntry, prevHash string) string {
	sum := sha256.Sum256([]byte(CanonicalPayload(e, prevHash)))
	return hex.EncodeToString(sum[:])
}

// NormalizeCreatedAt truncates to the precision the database keeps, so the hash survives a round trip.
func NormalizeCreatedAt(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// Walker verifies a chain incrementally. Entries must be fed in chain order.
// It keeps two predecessors: the stored hash of the previous entry (localises tampering) and the hash
// recomputed from genesis (exposes everything downstream of a break).
type Walker struct {
	prevStored   string
	prevComputed string
	seenHashed   bool

	Report domain.ChainReport
}

// NewWalker starts a walk at the genesis sentinel.
func NewWalker(templeID string) *Walker {
	return &Walker{
		prevStored:   GenesisHash,
		prevComputed: GenesisHash,
		Report:       domain.ChainReport{TempleID: templeID, Valid: true},
	}
}

// Step checks one entry. It returns the hash to backfill when the entry is a legacy row
// (no stored hash, before any hashed entry), and "" otherwise.
func (w *Walker) Step(e domain.JournalEntry) (backfill string) {
	w.Report.Checked++

	if e.IntegrityHash == "" && !w.seenHashed {
		h := ComputeHash(e, w.prevStored)
		w.prevStored = h
		w.prevComputed = ComputeHash(e, w.prevComputed)
		w.Report.Backfilled++
		return h
	}
	w.seenHashed = true

	expected := ComputeHash(e, w.prevStored)
	chained := ComputeHash(e, w.prevComputed)

	if expected != e.IntegrityHash {
		w.Report.Valid = false
		w.Report.Mismatches = append(w.Report.Mismatches, mismatch(e, expected))
	} else if chained != e.IntegrityHash {
		w.Report.Valid = false
		w.Report.Cascading = append(w.Report.Cascading, mismatch(e, chained))
	}

	w.prevStored = e.IntegrityHash
	w.prevComputed = chained
	return ""
}

func mismatch(e domain.JournalEntry, expected string) domain.ChainMismatch {
	return domain.ChainMismatch{
		EntryID:      e.EntryID,
		EntryNumber:  e.EntryNumber,
		ChainSeq:     e.ChainSeq,
		ExpectedHash: expected,
		StoredHash:   e.IntegrityHash,
	}
}
