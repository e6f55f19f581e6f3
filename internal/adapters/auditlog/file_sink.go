// Package auditlog keeps the append-only audit trail of the ledger: one pipe-delimited file per temple,
// TIMESTAMP|ACTOR|ACTION|ENTRY_ID|ENTRY_NUMBER|AMOUNT|NARRATION|STATUS|HASH.
// Existing lines are never rewritten; the files are opened with O_APPEND only.
package auditlog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/temple_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

const fieldCount = 9

var templeIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// FileSink appends audit records to <dir>/<templeID>.log and reads them back.
type FileSink struct {
	dir   string
	mu    sync.Mutex
	files map[string]*os.File
}

var (
	_ portsrepo.AuditSink      = (*FileSink)(nil)
	_ portsrepo.AuditLogReader = (*FileSink)(nil)
)

// NewFileSink creates the directory if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory %s: %w", dir, err)
	}
	return &FileSink{dir: dir, files: map[string]*os.File{}}, nil
}

// Path returns the log file of a temple.
func (s *FileSink) Path(templeID string) (string, error) {
	if !templeIDPattern.MatchString(templeID) {
		return "", fmt.Errorf("%w: temple id %q cannot name an audit log", apperrors.ErrValidation, templeID)
	}
	return filepath.Join(s.dir, templeID+".log"), nil
}

// Append writes the records with a single write and syncs the file before returning.
// All records must belong to one temple.
func (s *FileSink) Append(ctx context.Context, records ...domain.AuditRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	templeID := records[0].TempleID
	var buf strings.Builder
	for _, r := range records {
		if r.TempleID != templeID {
			return fmt.Errorf("%w: audit records of temples %s and %s in one append", apperrors.ErrValidation, templeID, r.TempleID)
		}
		buf.WriteString(FormatRecord(r))
		buf.WriteByte('\n')
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.file(templeID)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(buf.String()); err != nil {
		return fmt.Errorf("failed to write audit records: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync audit log: %w", err)
	}
	return nil
}

func (s *FileSink) file(templeID string) (*os.File, error) {
	if f, ok := s.files[templeID]; ok {
		return f, nil
	}
	path, err := s.Path(templeID)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log %s: %w", path, err)
	}
	s.files[templeID] = f
	return f, nil
}

// ReadRecords parses a temple's log. A temple that never posted has an empty log.
func (s *FileSink) ReadRecords(ctx context.Context, templeID string) ([]domain.AuditRecord, error) {
	path, err := s.Path(templeID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.AuditRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log %s: %w", path, err)
	}
	defer f.Close()

	records := []domain.AuditRecord{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for n := 1; scanner.Scan(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if scanner.Text() == "" {
			continue
		}
		r, err := ParseRecord(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, n, err)
		}
		r.TempleID = templeID
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log %s: %w", path, err)
	}
	return records, nil
}

// Close closes every open log file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for id, f := range s.files {
		errs = append(errs, f.Close())
		delete(s.files, id)
	}
	return errors.Join(errs...)
}

// FormatRecord renders one log line without the trailing newline.
func FormatRecord(r domain.AuditRecord) string {
	fields := []string{
		r.Timestamp.UTC().Format(time.RFC3339Nano),
		escape(r.Actor),
		string(r.Action),
		strconv.FormatInt(r.EntryID, 10),
		escape(r.EntryNumber),
		r.Amount.StringFixed(2),
		escape(r.Narration),
		string(r.Status),
		r.Hash,
	}
	return strings.Join(fields, "|")
}

// ParseRecord is the inverse of FormatRecord. TempleID is left empty.
func ParseRecord(line string) (domain.AuditRecord, error) {
	fields := split(line)
	if len(fields) != fieldCount {
		return domain.AuditRecord{}, fmt.Errorf("expected %d fields, got %d", fieldCount, len(fields))
	}
	ts, err := time.Parse(time.RFC3339Nano, fields[0])
	if err != nil {
		return domain.AuditRecord{}, fmt.Errorf("bad timestamp: %w", err)
	}
	id, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return domain.AuditRecord{}, fmt.Errorf("bad entry id: %w", err)
	}
	amount, err := decimal.NewFromString(fields[5])
	if err != nil {
		return domain.AuditRecord{}, fmt.Errorf("bad amount: %w", err)
	}
	return domain.AuditRecord{
		Timestamp:   ts,
		Actor:       fields[1],
		Action:      domain.AuditAction(fields[2]),
		EntryID:     id,
		EntryNumber: fields[4],
		Amount:      amount,
		Narration:   fields[6],
		Status:      domain.EntryStatus(fields[7]),
		Hash:        fields[8],
	}, nil
}

var escaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`, "\n", `\n`, "\r", `\r`)

func escape(s string) string {
	return escaper.Replace(s)
}

// split cuts on unescaped pipes and unescapes each field.
func split(line string) []string {
	var (
		fields []string
		cur    strings.Builder
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && i+1 < len(line):
			i++
			switch line[i] {
			case 'n':
				cur.WriteByte('\n')
			case 'r':
				cur.WriteByte('\r')
			default:
				cur.WriteByte(line[i])
			}
		case c == '|':
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(fields, cur.String())
}
