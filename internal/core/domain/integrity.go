package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChainMismatch describes one entry whose stored hash disagrees with the recomputed one.
type ChainMismatch struct {
	EntryID      int64  `json:"entryID"`
	EntryNumber  string `json:"entryNumber"`
	ChainSeq     int64  `json:"chainSeq"`
	ExpectedHash string `json:"expectedHash"`
	StoredHash   string `json:"storedHash"`
}

// ChainReport is the result of walking a temple's integrity chain.
// Mismatches lists entries that do not match their stored predecessor (the tampered positions);
// Cascading lists the remaining entries invalidated downstream of the first break.
type ChainReport struct {
	TempleID   string          `json:"templeID"`
	Valid      bool            `json:"valid"`
	Checked    int             `json:"checked"`
	Backfilled int             `json:"backfilled"`
	Mismatches []ChainMismatch `json:"mismatches"`
	Cascading  []ChainMismatch `json:"cascading"`
	VerifiedAt time.Time       `json:"verifiedAt"`
}

// FirstMismatch returns the earliest tampered position, if any.
func (r ChainReport) FirstMismatch() (ChainMismatch, bool) {
	if len(r.Mismatches) == 0 {
		return ChainMismatch{}, false
	}
	return r.Mismatches[0], true
}

// ShortHash truncates a hash for display.
func ShortHash(h string) string {
	if len(h) <= 12 {
		return h
	}
	return h[:12]
}

// AuditAction is the verb recorded in the audit log.
type AuditAction string

const (
	AuditPost    AuditAction = "POST"
	AuditCancel  AuditAction = "CANCEL"
	AuditReverse AuditAction = "REVERSE"
)

// AuditRecord is one line of the append-only audit log. TempleID selects the log file and is not
// written into the line itself.
type AuditRecord struct {
	TempleID    string
	Timestamp   time.Time
	Actor       string
	Action      AuditAction
	EntryID     int64
	EntryNumber string
	Amount      decimal.Decimal
	Narration   string
	Status      EntryStatus
	Hash        string
}

// AuditDiscrepancy is a disagreement between the audit log and the database.
type AuditDiscrepancy struct {
	EntryID     int64  `json:"entryID"`
	EntryNumber string `json:"entryNumber"`
	Problem     string `json:"problem"`
	LogValue    string `json:"logValue"`
	StoredValue string `json:"storedValue"`
}

// AuditCheckReport is the result of comparing the audit log to stored entries.
type AuditCheckReport struct {
	TempleID       string             `json:"templeID"`
	RecordsRead    int                `json:"recordsRead"`
	EntriesChecked int                `json:"entriesChecked"`
	Discrepancies  []AuditDiscrepancy `json:"discrepancies"`
}
