package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/temple_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/temple_ledger/internal/core/ports/services"
	"github.com/SscSPs/temple_ledger/internal/metrics"
)

// integrityService verifies the hash chain and cross checks it against the audit log.
type integrityService struct {
	BaseService
	store portsrepo.Store
	cache portsrepo.ChainReportCache
	logs  portsrepo.AuditLogReader
}

// IntegrityOption is a functional option for configuring the integrity service
type IntegrityOption func(*integrityService)

// WithChainReportCache keeps the last report of each temple in cache
func WithChainReportCache(cache portsrepo.ChainReportCache) IntegrityOption {
	return func(s *integrityService) {
		s.cache = cache
	}
}

// WithAuditLogReader enables CrossCheckAuditLog
func WithAuditLogReader(reader portsrepo.AuditLogReader) IntegrityOption {
	return func(s *integrityService) {
		s.logs = reader
	}
}

// WithIntegrityClock overrides the clock stamped on reports
func WithIntegrityClock(clock func() time.Time) IntegrityOption {
	return func(s *integrityService) {
		s.clock = clock
	}
}

// NewIntegrityService creates a new integrity service
func NewIntegrityService(store portsrepo.Store, options ...IntegrityOption) portssvc.IntegritySvcFacade {
	svc := &integrityService{store: store}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.IntegritySvcFacade = (*integrityService)(nil)

func (s *integrityService) VerifyChain(ctx context.Context, templeID string) (*domain.ChainReport, error) {
	var report domain.ChainReport
	err := s.store.WithSnapshot(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		var err error
		report, _, err = walkChain(ctx, repos, templeID, false)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to read chain", slog.String("temple_id", templeID))
		return nil, err
	}

	// Legacy rows are hashed under the posting lock so a concurrent post cannot link past them.
	if report.Backfilled > 0 {
		err = s.store.WithTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
			if err := repos.Journals().LockChain(ctx, templeID); err != nil {
				return err
			}
			var err error
			report, _, err = walkChain(ctx, repos, templeID, true)
			return err
		})
		if err != nil {
			s.LogError(ctx, err, "Failed to backfill legacy chain entries", slog.String("temple_id", templeID))
			return nil, err
		}
		s.LogInfo(ctx, "Backfilled legacy chain entries", slog.String("temple_id", templeID), slog.Int("count", report.Backfilled))
	}
	report.VerifiedAt = s.Now()

	if s.cache != nil {
		if err := s.cache.PutReport(ctx, report); err != nil {
			s.LogWarn(ctx, "Failed to cache chain report", slog.String("temple_id", templeID), slog.String("error", err.Error()))
		}
	}
	metrics.LastChainVerification.WithLabelValues(templeID, strconv.FormatBool(report.Valid)).Set(float64(report.VerifiedAt.Unix()))

	if report.Valid {
		s.LogInfo(ctx, "Chain verified", slog.String("temple_id", templeID), slog.Int("checked", report.Checked))
		return &report, nil
	}

	metrics.TamperDetections.Inc()
	for _, m := range report.Mismatches {
		s.GetLogger(ctx).Error("Integrity chain mismatch",
			slog.String("temple_id", templeID),
			slog.Int64("entry_id", m.EntryID),
			slog.String("entry_number", m.EntryNumber),
			slog.String("expected", domain.ShortHash(m.ExpectedHash)),
			slog.String("stored", domain.ShortHash(m.StoredHash)))
	}
	if len(report.Cascading) > 0 {
		s.GetLogger(ctx).Error("Entries invalidated downstream of a chain break",
			slog.String("temple_id", templeID), slog.Int("count", len(report.Cascading)))
	}
	return &report, tamperError(report)
}

func (s *integrityService) LastReport(ctx context.Context, templeID string) (*domain.ChainReport, error) {
	if s.cache == nil {
		return nil, apperrors.ErrNotFound
	}
	report, err := s.cache.GetReport(ctx, templeID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to read cached chain report", slog.String("temple_id", templeID))
		}
		return nil, err
	}
	return report, nil
}

func (s *integrityService) CrossCheckAuditLog(ctx context.Context, templeID string) (*domain.AuditCheckReport, error) {
	if s.logs == nil {
		return nil, apperrors.NewAppError(500, "audit log reader is not configured", nil)
	}
	records, err := s.logs.ReadRecords(ctx, templeID)
	if err != nil {
		s.LogError(ctx, err, "Failed to read audit log", slog.String("temple_id", templeID))
		return nil, err
	}

	var chain []domain.JournalEntry
	err = s.store.WithSnapshot(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		var err error
		chain, err = repos.Journals().ListChain(ctx, templeID)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to read chain", slog.String("temple_id", templeID))
		return nil, err
	}

	byID := make(map[int64]domain.JournalEntry, len(chain))
	for _, e := range chain {
		byID[e.EntryID] = e
	}
	report := &domain.AuditCheckReport{
		TempleID:       templeID,
		RecordsRead:    len(records),
		EntriesChecked: len(chain),
		Discrepancies:  []domain.AuditDiscrepancy{},
	}
	add := func(r domain.AuditRecord, problem, logged, stored string) {
		report.Discrepancies = append(report.Discrepancies, domain.AuditDiscrepancy{
			EntryID:     r.EntryID,
			EntryNumber: r.EntryNumber,
			Problem:     problem,
			LogValue:    logged,
			StoredValue: stored,
		})
	}

	logged := make(map[int64]bool, len(records))
	var firstLoggedSeq int64
	for _, r := range records {
		e, ok := byID[r.EntryID]
		if !ok {
			add(r, "entry missing from database", string(r.Action), "")
			continue
		}
		switch r.Action {
		case domain.AuditPost:
			logged[e.EntryID] = true
			if firstLoggedSeq == 0 || e.ChainSeq < firstLoggedSeq {
				firstLoggedSeq = e.ChainSeq
			}
			if r.EntryNumber != e.EntryNumber {
				add(r, "entry number differs", r.EntryNumber, e.EntryNumber)
			}
			if !r.Amount.Equal(e.TotalAmount) {
				add(r, "amount differs", r.Amount.StringFixed(2), e.TotalAmount.StringFixed(2))
			}
			if r.Hash != e.IntegrityHash {
				add(r, "hash differs", domain.ShortHash(r.Hash), domain.ShortHash(e.IntegrityHash))
			}
		case domain.AuditCancel:
			if e.Status != domain.Cancelled {
				add(r, "status differs", string(domain.Cancelled), string(e.Status))
			}
		case domain.AuditReverse:
			if e.Status != domain.Reversed {
				add(r, "status differs", string(domain.Reversed), string(e.Status))
			}
		}
	}

	// Entries older than the first logged posting predate the audit log.
	for _, e := range chain {
		if firstLoggedSeq == 0 || e.ChainSeq < firstLoggedSeq || logged[e.EntryID] {
			continue
		}
		add(domain.AuditRecord{EntryID: e.EntryID, EntryNumber: e.EntryNumber}, "posting missing from audit log", "", e.EntryNumber)
	}

	if len(report.Discrepancies) > 0 {
		metrics.TamperDetections.Inc()
		s.GetLogger(ctx).Error("Audit log disagrees with the database",
			slog.String("temple_id", templeID), slog.Int("discrepancies", len(report.Discrepancies)))
	} else {
		s.LogInfo(ctx, "Audit log matches the database", slog.String("temple_id", templeID), slog.Int("records", len(records)))
	}
	return report, nil
}
