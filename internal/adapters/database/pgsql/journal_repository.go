package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/temple_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/temple_ledger/internal/models"
	"github.com/SscSPs/temple_ledger/internal/utils/mapping"
	"github.com/SscSPs/temple_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
)

// PgxJournalRepository reads and writes journal entries and their lines.
type PgxJournalRepository struct {
	BaseRepository
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

const entryColumns = `entry_id, temple_id, entry_number, entry_date, narration, reference_kind, reference_id,
	total_amount, status, financial_year_id, chain_seq, integrity_hash, reversal_of_id, reversed_by_id,
	posted_by, posted_at, cancelled_by, cancelled_at, cancel_reason,
	created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_id, line_no, account_id, debit, credit, description, instrument_ref`

const ledgerLineColumns = `l.line_id, l.entry_id, l.line_no, l.account_id, l.debit, l.credit, l.description,
	l.instrument_ref, e.entry_number, e.entry_date, e.status, e.narration`

// countedStatuses are the entry statuses whose lines affect balances.
const countedStatuses = `('POSTED', 'REVERSED')`

func (r *PgxJournalRepository) queryEntries(ctx context.Context, query string, args ...any) ([]domain.JournalEntry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "journal entries")
	}
	modelEntries, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.JournalEntry])
	if err != nil {
		return nil, translateError(err, "journal entries")
	}
	out := make([]domain.JournalEntry, len(modelEntries))
	for i, m := range modelEntries {
		out[i] = mapping.ToDomainJournalEntry(m)
	}
	return out, nil
}

func (r *PgxJournalRepository) queryLedgerLines(ctx context.Context, query string, args ...any) ([]domain.LedgerLine, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "ledger lines")
	}
	modelLines, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.LedgerLine])
	if err != nil {
		return nil, translateError(err, "ledger lines")
	}
	out := make([]domain.LedgerLine, len(modelLines))
	for i, m := range modelLines {
		out[i] = mapping.ToDomainLedgerLine(m)
	}
	return out, nil
}

func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, templeID string, entryID int64) (*domain.JournalEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE temple_id = $1 AND entry_id = $2`, templeID, entryID)
	if err != nil {
		return nil, translateError(err, "journal entry")
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.JournalEntry])
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("journal entry", entryID)
		}
		return nil, translateError(err, "journal entry")
	}
	entry := mapping.ToDomainJournalEntry(m)

	rows, err = r.db.Query(ctx, `SELECT `+lineColumns+` FROM journal_lines WHERE entry_id = $1 ORDER BY line_no`, entryID)
	if err != nil {
		return nil, translateError(err, "journal lines")
	}
	modelLines, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.JournalLine])
	if err != nil {
		return nil, translateError(err, "journal lines")
	}
	entry.Lines = make([]domain.JournalLine, len(modelLines))
	for i, l := range modelLines {
		entry.Lines[i] = mapping.ToDomainJournalLine(l)
	}
	return &entry, nil
}

func (r *PgxJournalRepository) ListEntries(ctx context.Context, templeID string, filter portsrepo.EntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	w := &where{}
	w.add("temple_id = ?", templeID)
	if filter.Status != nil {
		w.add("status = ?", string(*filter.Status))
	}
	if filter.From != nil {
		w.add("entry_date >= ?", *filter.From)
	}
	if filter.To != nil {
		w.add("entry_date <= ?", *filter.To)
	}
	if nextToken != nil && *nextToken != "" {
		tokenDate, tokenID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		w.conds = append(w.conds, fmt.Sprintf("(entry_date, entry_id) < (%s, %s)", w.next(tokenDate), w.next(tokenID)))
	}

	query := `SELECT ` + entryColumns + ` FROM journal_entries` + w.String() + ` ORDER BY entry_date DESC, entry_id DESC`
	if limit > 0 {
		query += ` LIMIT ` + w.next(limit+1)
	}
	entries, err := r.queryEntries(ctx, query, w.args...)
	if err != nil {
		return nil, nil, err
	}
	if limit <= 0 || len(entries) <= limit {
		return entries, nil, nil
	}
	page := entries[:limit]
	last := page[len(page)-1]
	token := pagination.EncodeToken(last.EntryDate, last.EntryID)
	return page, &token, nil
}

func (r *PgxJournalRepository) ListChain(ctx context.Context, templeID string) ([]domain.JournalEntry, error) {
	return r.queryEntries(ctx, `
		SELECT `+entryColumns+` FROM journal_entries
		WHERE temple_id = $1 AND status <> 'DRAFT' AND chain_seq IS NOT NULL
		ORDER BY chain_seq`, templeID)
}

func (r *PgxJournalRepository) LastChainLink(ctx context.Context, templeID string) (int64, string, error) {
	var (
		seq  int64
		hash string
	)
	err := r.db.QueryRow(ctx, `
		SELECT chain_seq, integrity_hash FROM journal_entries
		WHERE temple_id = $1 AND status <> 'DRAFT' AND chain_seq IS NOT NULL
		ORDER BY chain_seq DESC LIMIT 1`, templeID).Scan(&seq, &hash)
	if err != nil {
		if isNoRows(err) {
			return 0, "", nil
		}
		return 0, "", translateError(err, "chain tail")
	}
	return seq, hash, nil
}

func (r *PgxJournalRepository) CountDrafts(ctx context.Context, templeID string, from, to time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM journal_entries
		WHERE temple_id = $1 AND status = 'DRAFT' AND entry_date BETWEEN $2 AND $3`, templeID, from, to).Scan(&n)
	if err != nil {
		return 0, translateError(err, "draft count")
	}
	return n, nil
}

func (r *PgxJournalRepository) SumLinesByAccount(ctx context.Context, templeID string, q portsrepo.LineSumQuery) ([]domain.LineTotals, error) {
	w := &where{}
	w.add("e.temple_id = ?", templeID)
	w.conds = append(w.conds, "e.status IN "+countedStatuses)
	if len(q.AccountIDs) > 0 {
		w.add("l.account_id = ANY(?)", q.AccountIDs)
	}
	if len(q.AccountTypes) > 0 {
		types := make([]string, len(q.AccountTypes))
		for i, t := range q.AccountTypes {
			types[i] = string(t)
		}
		w.add("a.account_type = ANY(?)", types)
	}
	if q.From != nil {
		w.add("e.entry_date >= ?", *q.From)
	}
	if q.To != nil {
		w.add("e.entry_date <= ?", *q.To)
	}
	if q.ExcludeReferenceKind != "" {
		w.add("e.reference_kind <> ?", q.ExcludeReferenceKind)
	}

	rows, err := r.db.Query(ctx, `
		SELECT l.account_id, COALESCE(SUM(l.debit), 0) AS debit, COALESCE(SUM(l.credit), 0) AS credit
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		JOIN accounts a ON a.account_id = l.account_id`+w.String()+`
		GROUP BY l.account_id
		ORDER BY l.account_id`, w.args...)
	if err != nil {
		return nil, translateError(err, "line totals")
	}
	modelTotals, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.LineTotals])
	if err != nil {
		return nil, translateError(err, "line totals")
	}
	out := make([]domain.LineTotals, len(modelTotals))
	for i, m := range modelTotals {
		out[i] = mapping.ToDomainLineTotals(m)
	}
	return out, nil
}

func (r *PgxJournalRepository) ListLedgerLines(ctx context.Context, templeID string, accountID int64, from, to time.Time) ([]domain.LedgerLine, error) {
	return r.queryLedgerLines(ctx, `
		SELECT `+ledgerLineColumns+`
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE e.temple_id = $1 AND l.account_id = $2 AND e.status IN `+countedStatuses+`
			AND e.entry_date BETWEEN $3 AND $4
		ORDER BY e.entry_date, l.line_id`, templeID, accountID, from, to)
}

func (r *PgxJournalRepository) FindLedgerLinesByIDs(ctx context.Context, templeID string, lineIDs []int64) ([]domain.LedgerLine, error) {
	if len(lineIDs) == 0 {
		return nil, nil
	}
	return r.queryLedgerLines(ctx, `
		SELECT `+ledgerLineColumns+`
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE e.temple_id = $1 AND l.line_id = ANY($2) AND e.status IN `+countedStatuses+`
		ORDER BY e.entry_date, l.line_id`, templeID, lineIDs)
}

// LockChain takes a transaction-scoped advisory lock keyed by the temple. It is released at commit or rollback.
func (r *PgxJournalRepository) LockChain(ctx context.Context, templeID string) error {
	if err := r.writable(); err != nil {
		return err
	}
	if !r.inTx {
		return apperrors.NewAppError(500, "chain lock requires a unit of work", nil)
	}
	if _, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, "ledger-chain:"+templeID); err != nil {
		return translateError(err, "chain lock")
	}
	return nil
}

func (r *PgxJournalRepository) NextEntrySequence(ctx context.Context, templeID string, yearID int64) (int64, error) {
	if err := r.writable(); err != nil {
		return 0, err
	}
	var seq int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO entry_sequences (temple_id, year_id, last_seq) VALUES ($1, $2, 1)
		ON CONFLICT (temple_id, year_id) DO UPDATE SET last_seq = entry_sequences.last_seq + 1
		RETURNING last_seq`, templeID, yearID).Scan(&seq)
	if err != nil {
		return 0, translateError(err, "entry sequence")
	}
	return seq, nil
}

func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry *domain.JournalEntry) error {
	if err := r.writable(); err != nil {
		return err
	}
	m := mapping.ToModelJournalEntry(*entry)

	if entry.EntryID == 0 {
		err := r.db.QueryRow(ctx, `
			INSERT INTO journal_entries (temple_id, entry_number, entry_date, narration, reference_kind, reference_id,
				total_amount, status, financial_year_id, chain_seq, integrity_hash, reversal_of_id, reversed_by_id,
				posted_by, posted_at, cancelled_by, cancelled_at, cancel_reason,
				created_at, created_by, last_updated_at, last_updated_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
			RETURNING entry_id`,
			m.TempleID, m.EntryNumber, m.EntryDate, m.Narration, m.ReferenceKind, m.ReferenceID,
			m.TotalAmount, m.Status, m.FinancialYearID, m.ChainSeq, m.IntegrityHash, m.ReversalOfID, m.ReversedByID,
			m.PostedBy, m.PostedAt, m.CancelledBy, m.CancelledAt, m.CancelReason,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		).Scan(&entry.EntryID)
		if err != nil {
			return translateError(err, "journal entry "+entry.EntryNumber)
		}
	} else {
		tag, err := r.db.Exec(ctx, `
			UPDATE journal_entries
			SET entry_number = $3, entry_date = $4, narration = $5, reference_kind = $6, reference_id = $7,
				total_amount = $8, status = $9, financial_year_id = $10, chain_seq = $11, integrity_hash = $12,
				reversal_of_id = $13, posted_by = $14, posted_at = $15, last_updated_at = $16, last_updated_by = $17
			WHERE temple_id = $1 AND entry_id = $2 AND status = 'DRAFT'`,
			m.TempleID, m.EntryID, m.EntryNumber, m.EntryDate, m.Narration, m.ReferenceKind, m.ReferenceID,
			m.TotalAmount, m.Status, m.FinancialYearID, m.ChainSeq, m.IntegrityHash,
			m.ReversalOfID, m.PostedBy, m.PostedAt, m.LastUpdatedAt, m.LastUpdatedBy,
		)
		if err != nil {
			return translateError(err, "journal entry "+entry.EntryNumber)
		}
		if tag.RowsAffected() == 0 {
			return r.draftMissing(ctx, entry.TempleID, entry.EntryID)
		}
		if _, err := r.db.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id = $1`, entry.EntryID); err != nil {
			return translateError(err, "journal lines")
		}
	}
	return r.insertLines(ctx, entry)
}

// insertLines writes every line of entry in one batch and copies the generated ids back.
func (r *PgxJournalRepository) insertLines(ctx context.Context, entry *domain.JournalEntry) error {
	if len(entry.Lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i := range entry.Lines {
		entry.Lines[i].EntryID = entry.EntryID
		entry.Lines[i].LineNo = i + 1
		l := mapping.ToModelJournalLine(entry.Lines[i])
		batch.Queue(`
			INSERT INTO journal_lines (entry_id, line_no, account_id, debit, credit, description, instrument_ref)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING line_id`,
			l.EntryID, l.LineNo, l.AccountID, l.Debit, l.Credit, l.Description, l.InstrumentRef)
	}
	br := r.db.SendBatch(ctx, batch)
	for i := range entry.Lines {
		if err := br.QueryRow().Scan(&entry.Lines[i].LineID); err != nil {
			_ = br.Close()
			return translateError(err, fmt.Sprintf("journal line %d", i+1))
		}
	}
	if err := br.Close(); err != nil {
		return translateError(err, "journal lines batch")
	}
	return nil
}

// draftMissing explains why an update guarded by status = 'DRAFT' touched nothing.
func (r *PgxJournalRepository) draftMissing(ctx context.Context, templeID string, entryID int64) error {
	var status string
	err := r.db.QueryRow(ctx, `SELECT status FROM journal_entries WHERE temple_id = $1 AND entry_id = $2`,
		templeID, entryID).Scan(&status)
	if err != nil {
		if isNoRows(err) {
			return notFound("journal entry", entryID)
		}
		return translateError(err, "journal entry")
	}
	return fmt.Errorf("entry %d is %s: %w", entryID, status, apperrors.ErrConflict)
}

func (r *PgxJournalRepository) updateEntry(ctx context.Context, templeID string, entryID int64, set string, args ...any) error {
	if err := r.writable(); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `UPDATE journal_entries SET `+set+` WHERE temple_id = $1 AND entry_id = $2`,
		append([]any{templeID, entryID}, args...)...)
	if err != nil {
		return translateError(err, "journal entry")
	}
	if tag.RowsAffected() == 0 {
		return notFound("journal entry", entryID)
	}
	return nil
}

func (r *PgxJournalRepository) SetIntegrityHash(ctx context.Context, templeID string, entryID int64, hash string) error {
	return r.updateEntry(ctx, templeID, entryID, `integrity_hash = $3`, hash)
}

func (r *PgxJournalRepository) MarkCancelled(ctx context.Context, templeID string, entryID int64, actor string, at time.Time, reason string) error {
	return r.updateEntry(ctx, templeID, entryID,
		`status = 'CANCELLED', cancelled_by = $3, cancelled_at = $4, cancel_reason = $5, last_updated_at = $4, last_updated_by = $3`,
		actor, at, reason)
}

func (r *PgxJournalRepository) MarkReversed(ctx context.Context, templeID string, entryID, reversalID int64, actor string, at time.Time) error {
	return r.updateEntry(ctx, templeID, entryID,
		`status = 'REVERSED', reversed_by_id = $3, last_updated_at = $4, last_updated_by = $5`,
		reversalID, at, actor)
}

func (r *PgxJournalRepository) DeleteDraft(ctx context.Context, templeID string, entryID int64) error {
	if err := r.writable(); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM journal_entries WHERE temple_id = $1 AND entry_id = $2 AND status = 'DRAFT'`,
		templeID, entryID)
	if err != nil {
		return translateError(err, "journal entry")
	}
	if tag.RowsAffected() == 0 {
		return r.draftMissing(ctx, templeID, entryID)
	}
	return nil
}
