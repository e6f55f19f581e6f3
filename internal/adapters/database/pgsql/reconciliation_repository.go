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
	"github.com/jackc/pgx/v5"
)

// PgxReconciliationRepository stores bank statements, matches, reconciliations and outstanding items.
type PgxReconciliationRepository struct {
	BaseRepository
}

var _ portsrepo.ReconciliationRepositoryFacade = (*PgxReconciliationRepository)(nil)

const statementColumns = `statement_id, temple_id, account_id, period_start, period_end, opening_balance,
	closing_balance, import_batch_id, created_by, created_at`

const statementEntryColumns = `se.statement_entry_id, se.statement_id, se.seq, se.transaction_date, se.value_date,
	se.direction, se.amount, se.description, se.reference_number, se.running_balance,
	m.journal_line_id AS matched_line_id`

const reconciliationColumns = `reconciliation_id, temple_id, statement_id, account_id, period_start, period_end,
	book_opening_balance, book_closing_balance, bank_opening_balance, bank_closing_balance,
	deposits_in_transit, cheques_not_cleared, charges_not_recorded, interest_not_recorded,
	adjusted_book_balance, adjusted_bank_balance, difference, status, matched_count, run_id,
	reconciled_by, reconciled_at`

const itemColumns = `item_id, temple_id, account_id, reconciliation_id, item_type, source, journal_line_id,
	statement_entry_id, amount, item_date, description, cleared, cleared_at, cleared_by_reconciliation_id, created_at`

func (r *PgxReconciliationRepository) queryStatementEntries(ctx context.Context, query string, args ...any) ([]domain.BankStatementEntry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "statement entries")
	}
	modelEntries, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.BankStatementEntry])
	if err != nil {
		return nil, translateError(err, "statement entries")
	}
	out := make([]domain.BankStatementEntry, len(modelEntries))
	for i, m := range modelEntries {
		out[i] = mapping.ToDomainBankStatementEntry(m)
	}
	return out, nil
}

func (r *PgxReconciliationRepository) queryItems(ctx context.Context, query string, args ...any) ([]domain.OutstandingItem, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "outstanding items")
	}
	modelItems, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.OutstandingItem])
	if err != nil {
		return nil, translateError(err, "outstanding items")
	}
	return mapping.ToDomainOutstandingItems(modelItems), nil
}

func (r *PgxReconciliationRepository) FindStatementByID(ctx context.Context, templeID string, statementID int64) (*domain.BankStatement, error) {
	rows, err := r.db.Query(ctx, `SELECT `+statementColumns+` FROM bank_statements WHERE temple_id = $1 AND statement_id = $2`,
		templeID, statementID)
	if err != nil {
		return nil, translateError(err, "bank statement")
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.BankStatement])
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("bank statement", statementID)
		}
		return nil, translateError(err, "bank statement")
	}
	stmt := mapping.ToDomainBankStatement(m)

	stmt.Entries, err = r.queryStatementEntries(ctx, `
		SELECT `+statementEntryColumns+`
		FROM bank_statement_entries se
		LEFT JOIN reconciliation_matches m ON m.statement_entry_id = se.statement_entry_id AND m.temple_id = $1
		WHERE se.statement_id = $2
		ORDER BY se.seq`, templeID, statementID)
	if err != nil {
		return nil, err
	}
	return &stmt, nil
}

func (r *PgxReconciliationRepository) FindStatementEntriesByIDs(ctx context.Context, templeID string, entryIDs []int64) ([]domain.BankStatementEntry, error) {
	if len(entryIDs) == 0 {
		return nil, nil
	}
	return r.queryStatementEntries(ctx, `
		SELECT `+statementEntryColumns+`
		FROM bank_statement_entries se
		JOIN bank_statements s ON s.statement_id = se.statement_id
		LEFT JOIN reconciliation_matches m ON m.statement_entry_id = se.statement_entry_id AND m.temple_id = s.temple_id
		WHERE s.temple_id = $1 AND se.statement_entry_id = ANY($2)
		ORDER BY se.statement_entry_id`, templeID, entryIDs)
}

func (r *PgxReconciliationRepository) SaveStatement(ctx context.Context, statement *domain.BankStatement) error {
	if err := r.writable(); err != nil {
		return err
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO bank_statements (temple_id, account_id, period_start, period_end, opening_balance,
			closing_balance, import_batch_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING statement_id`,
		statement.TempleID, statement.AccountID, statement.PeriodStart, statement.PeriodEnd, statement.OpeningBalance,
		statement.ClosingBalance, statement.ImportBatchID, statement.CreatedBy, statement.CreatedAt,
	).Scan(&statement.StatementID)
	if err != nil {
		return translateError(err, "bank statement")
	}
	if len(statement.Entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := range statement.Entries {
		e := &statement.Entries[i]
		e.StatementID = statement.StatementID
		e.Seq = i + 1
		batch.Queue(`
			INSERT INTO bank_statement_entries (statement_id, seq, transaction_date, value_date, direction, amount,
				description, reference_number, running_balance)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING statement_entry_id`,
			e.StatementID, e.Seq, e.TransactionDate, e.ValueDate, string(e.Direction), e.Amount,
			e.Description, e.ReferenceNumber, e.RunningBalance)
	}
	br := r.db.SendBatch(ctx, batch)
	for i := range statement.Entries {
		if err := br.QueryRow().Scan(&statement.Entries[i].StatementEntryID); err != nil {
			_ = br.Close()
			return translateError(err, fmt.Sprintf("statement row %d", i+1))
		}
	}
	if err := br.Close(); err != nil {
		return translateError(err, "statement rows batch")
	}
	return nil
}

func (r *PgxReconciliationRepository) findReconciliation(ctx context.Context, what string, id int64, query string, args ...any) (*domain.BankReconciliation, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, what)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.BankReconciliation])
	if err != nil {
		if isNoRows(err) {
			return nil, notFound(what, id)
		}
		return nil, translateError(err, what)
	}
	rec := mapping.ToDomainBankReconciliation(m)
	rec.OutstandingItems, err = r.queryItems(ctx, `
		SELECT `+itemColumns+` FROM reconciliation_outstanding_items
		WHERE reconciliation_id = $1 ORDER BY item_date, item_id`, rec.ReconciliationID)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *PgxReconciliationRepository) FindReconciliationByID(ctx context.Context, templeID string, reconciliationID int64) (*domain.BankReconciliation, error) {
	return r.findReconciliation(ctx, "bank reconciliation", reconciliationID,
		`SELECT `+reconciliationColumns+` FROM bank_reconciliations WHERE temple_id = $1 AND reconciliation_id = $2`,
		templeID, reconciliationID)
}

func (r *PgxReconciliationRepository) FindReconciliationByStatement(ctx context.Context, templeID string, statementID int64) (*domain.BankReconciliation, error) {
	return r.findReconciliation(ctx, "bank reconciliation for statement", statementID,
		`SELECT `+reconciliationColumns+` FROM bank_reconciliations WHERE temple_id = $1 AND statement_id = $2`,
		templeID, statementID)
}

func (r *PgxReconciliationRepository) ListMatchedLineIDs(ctx context.Context, templeID string, accountID int64) (map[int64]bool, error) {
	rows, err := r.db.Query(ctx, `SELECT journal_line_id FROM reconciliation_matches WHERE temple_id = $1 AND account_id = $2`,
		templeID, accountID)
	if err != nil {
		return nil, translateError(err, "reconciliation matches")
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, translateError(err, "reconciliation matches")
	}
	out := make(map[int64]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *PgxReconciliationRepository) ListOutstandingItems(ctx context.Context, templeID string, accountID int64, includeCleared bool) ([]domain.OutstandingItem, error) {
	query := `SELECT ` + itemColumns + ` FROM reconciliation_outstanding_items WHERE temple_id = $1 AND account_id = $2`
	if !includeCleared {
		query += ` AND NOT cleared`
	}
	return r.queryItems(ctx, query+` ORDER BY item_date, item_id`, templeID, accountID)
}

func (r *PgxReconciliationRepository) FindOutstandingItemByID(ctx context.Context, templeID string, itemID int64) (*domain.OutstandingItem, error) {
	items, err := r.queryItems(ctx, `SELECT `+itemColumns+` FROM reconciliation_outstanding_items WHERE temple_id = $1 AND item_id = $2`,
		templeID, itemID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, notFound("outstanding item", itemID)
	}
	return &items[0], nil
}

func (r *PgxReconciliationRepository) SaveMatch(ctx context.Context, match *domain.ReconciliationMatch) error {
	if err := r.writable(); err != nil {
		return err
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO reconciliation_matches (temple_id, account_id, statement_entry_id, journal_line_id, tier, matched_by, matched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING match_id`,
		match.TempleID, match.AccountID, match.StatementEntryID, match.JournalLineID, string(match.Tier),
		match.MatchedBy, match.MatchedAt,
	).Scan(&match.MatchID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("line %d / statement entry %d already matched: %w",
				match.JournalLineID, match.StatementEntryID, apperrors.ErrDuplicate)
		}
		return translateError(err, "reconciliation match")
	}
	return nil
}

func (r *PgxReconciliationRepository) DeleteMatchBySource(ctx context.Context, templeID string, journalLineID, statementEntryID *int64) error {
	if err := r.writable(); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `
		DELETE FROM reconciliation_matches
		WHERE temple_id = $1 AND (journal_line_id = $2 OR statement_entry_id = $3)`,
		templeID, journalLineID, statementEntryID)
	return translateError(err, "reconciliation match")
}

func (r *PgxReconciliationRepository) SaveReconciliation(ctx context.Context, rec *domain.BankReconciliation) error {
	if err := r.writable(); err != nil {
		return err
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO bank_reconciliations (temple_id, statement_id, account_id, period_start, period_end,
			book_opening_balance, book_closing_balance, bank_opening_balance, bank_closing_balance,
			deposits_in_transit, cheques_not_cleared, charges_not_recorded, interest_not_recorded,
			adjusted_book_balance, adjusted_bank_balance, difference, status, matched_count, run_id,
			reconciled_by, reconciled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (temple_id, statement_id) DO UPDATE SET
			book_opening_balance = EXCLUDED.book_opening_balance,
			book_closing_balance = EXCLUDED.book_closing_balance,
			bank_opening_balance = EXCLUDED.bank_opening_balance,
			bank_closing_balance = EXCLUDED.bank_closing_balance,
			deposits_in_transit = EXCLUDED.deposits_in_transit,
			cheques_not_cleared = EXCLUDED.cheques_not_cleared,
			charges_not_recorded = EXCLUDED.charges_not_recorded,
			interest_not_recorded = EXCLUDED.interest_not_recorded,
			adjusted_book_balance = EXCLUDED.adjusted_book_balance,
			adjusted_bank_balance = EXCLUDED.adjusted_bank_balance,
			difference = EXCLUDED.difference,
			status = EXCLUDED.status,
			matched_count = EXCLUDED.matched_count,
			run_id = EXCLUDED.run_id,
			reconciled_by = EXCLUDED.reconciled_by,
			reconciled_at = EXCLUDED.reconciled_at
		RETURNING reconciliation_id`,
		rec.TempleID, rec.StatementID, rec.AccountID, rec.PeriodStart, rec.PeriodEnd,
		rec.BookOpeningBalance, rec.BookClosingBalance, rec.BankOpeningBalance, rec.BankClosingBalance,
		rec.DepositsInTransit, rec.ChequesNotCleared, rec.ChargesNotRecorded, rec.InterestNotRecorded,
		rec.AdjustedBookBalance, rec.AdjustedBankBalance, rec.Difference, string(rec.Status), rec.MatchedCount, rec.RunID,
		rec.ReconciledBy, rec.ReconciledAt,
	).Scan(&rec.ReconciliationID)
	if err != nil {
		return translateError(err, "bank reconciliation")
	}
	return nil
}

// sourceCondition selects the item or match row of a journal line or a statement entry, starting at placeholder $2.
const sourceCondition = `((journal_line_id IS NOT NULL AND journal_line_id = $2) OR (statement_entry_id IS NOT NULL AND statement_entry_id = $3))`

func (r *PgxReconciliationRepository) UpsertOutstandingItem(ctx context.Context, item *domain.OutstandingItem) error {
	if err := r.writable(); err != nil {
		return err
	}
	existing, err := r.queryItems(ctx, `
		SELECT `+itemColumns+` FROM reconciliation_outstanding_items
		WHERE temple_id = $1 AND `+sourceCondition+` FOR UPDATE`,
		item.TempleID, item.JournalLineID, item.StatementEntryID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		stored := existing[0]
		if !stored.Cleared {
			if _, err := r.db.Exec(ctx, `UPDATE reconciliation_outstanding_items SET reconciliation_id = $2 WHERE item_id = $1`,
				stored.ItemID, item.ReconciliationID); err != nil {
				return translateError(err, "outstanding item")
			}
			stored.ReconciliationID = item.ReconciliationID
		}
		*item = stored
		return nil
	}

	err = r.db.QueryRow(ctx, `
		INSERT INTO reconciliation_outstanding_items (temple_id, account_id, reconciliation_id, item_type, source,
			journal_line_id, statement_entry_id, amount, item_date, description, cleared, cleared_at,
			cleared_by_reconciliation_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING item_id`,
		item.TempleID, item.AccountID, item.ReconciliationID, string(item.ItemType), string(item.Source),
		item.JournalLineID, item.StatementEntryID, item.Amount, item.ItemDate, item.Description, item.Cleared, item.ClearedAt,
		item.ClearedByReconciliationID, item.CreatedAt,
	).Scan(&item.ItemID)
	if err != nil {
		return translateError(err, "outstanding item")
	}
	return nil
}

func (r *PgxReconciliationRepository) ClearOutstandingBySource(ctx context.Context, templeID string, journalLineID, statementEntryID *int64, reconciliationID int64, at time.Time) error {
	if err := r.writable(); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `
		UPDATE reconciliation_outstanding_items
		SET cleared = TRUE, cleared_at = $4, cleared_by_reconciliation_id = $5
		WHERE temple_id = $1 AND `+sourceCondition+` AND NOT cleared`,
		templeID, journalLineID, statementEntryID, at, reconciliationID)
	return translateError(err, "outstanding item")
}

func (r *PgxReconciliationRepository) ReopenOutstandingItem(ctx context.Context, templeID string, itemID int64) error {
	if err := r.writable(); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE reconciliation_outstanding_items
		SET cleared = FALSE, cleared_at = NULL, cleared_by_reconciliation_id = NULL
		WHERE temple_id = $1 AND item_id = $2`, templeID, itemID)
	if err != nil {
		return translateError(err, "outstanding item")
	}
	if tag.RowsAffected() == 0 {
		return notFound("outstanding item", itemID)
	}
	return nil
}
