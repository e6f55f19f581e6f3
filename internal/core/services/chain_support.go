package services

import (
	"context"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/temple_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/temple_ledger/internal/utils/integrity"
)

// walkChain verifies a temple's chain in chain order. With backfill set, legacy entries (no stored
// hash, before the first hashed entry) get their hash written through repos.
// It returns the report and the stored hash of the last entry.
func walkChain(ctx context.Context, repos portsrepo.Repositories, templeID string, backfill bool) (domain.ChainReport, string, error) {
	chain, err := repos.Journals().ListChain(ctx, templeID)
	if err != nil {
		return domain.ChainReport{}, "", err
	}

	w := integrity.NewWalker(templeID)
	tail := integrity.GenesisHash
	for _, e := range chain {
		if err := ctx.Err(); err != nil {
			return domain.ChainReport{}, "", err
		}
		if h := w.Step(e); h != "" {
			if backfill {
				if err := repos.Journals().SetIntegrityHash(ctx, templeID, e.EntryID, h); err != nil {
					return domain.ChainReport{}, "", err
				}
			}
			e.IntegrityHash = h
		}
		tail = e.IntegrityHash
	}
	return w.Report, tail, nil
}

// tamperError converts a failed report into the error surfaced to callers.
func tamperError(report domain.ChainReport) *apperrors.TamperDetectedError {
	views := make([]apperrors.ChainMismatchView, 0, len(report.Mismatches))
	for _, m := range report.Mismatches {
		views = append(views, apperrors.ChainMismatchView{
			EntryID:      m.EntryID,
			EntryNumber:  m.EntryNumber,
			ExpectedHash: domain.ShortHash(m.ExpectedHash),
			StoredHash:   domain.ShortHash(m.StoredHash),
		})
	}
	return &apperrors.TamperDetectedError{
		TempleID:   report.TempleID,
		Mismatches: views,
		Cascading:  len(report.Cascading),
	}
}
