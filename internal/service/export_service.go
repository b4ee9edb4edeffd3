package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// DefaultExportDateLayout renders dates the way a US locale date string does
const DefaultExportDateLayout = "1/2/2006"

// ExportService writes transaction lists as spreadsheet workbooks
type ExportService struct {
	dateLayout  string
	archiveRepo domain.ExportRepository
	urlExpiry   time.Duration
	now         func() time.Time
}

// NewExportService creates a new ExportService
func NewExportService(dateLayout string) *ExportService {
	if dateLayout == "" {
		dateLayout = DefaultExportDateLayout
	}
	return &ExportService{
		dateLayout: dateLayout,
		now:        time.Now,
	}
}

// SetArchiveRepository enables archiving exports to object storage
func (s *ExportService) SetArchiveRepository(repo domain.ExportRepository, urlExpiry time.Duration) {
	s.archiveRepo = repo
	s.urlExpiry = urlExpiry
}

// ArchiveEnabled reports whether exports can be archived
func (s *ExportService) ArchiveEnabled() bool {
	return s.archiveRepo != nil
}

// ExportRow formats one transaction into the export columns
func (s *ExportService) ExportRow(tx *domain.Transaction) []string {
	return []string{
		tx.Date.Format(s.dateLayout),
		tx.Description,
		capitalizeType(tx.Type),
		tx.Amount.StringFixed(2),
	}
}

// Export writes the transactions to a single-sheet workbook.
// An empty list yields domain.ErrNothingToExport.
func (s *ExportService) Export(transactions []*domain.Transaction) ([]byte, error) {
	if len(transactions) == 0 {
		return nil, domain.ErrNothingToExport
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), domain.ExportSheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := s.writeRow(f, 1, domain.ExportColumns); err != nil {
		return nil, err
	}
	for i, tx := range transactions {
		if err := s.writeRow(f, i+2, s.ExportRow(tx)); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *ExportService) writeRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(domain.ExportSheetName, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

// Archive exports the transactions, uploads the workbook and returns a temporary download link
func (s *ExportService) Archive(ctx context.Context, session *domain.Session, transactions []*domain.Transaction) (*domain.ExportArchive, error) {
	if s.archiveRepo == nil {
		return nil, domain.ErrExportUnavailable
	}

	data, err := s.Export(transactions)
	if err != nil {
		return nil, err
	}

	objectPath := fmt.Sprintf("exports/%s/%s.xlsx", session.ID, uuid.New())
	if _, err := s.archiveRepo.Upload(ctx, objectPath, bytes.NewReader(data), domain.ExportContentType, int64(len(data))); err != nil {
		return nil, err
	}

	url, err := s.archiveRepo.GeneratePresignedURL(ctx, objectPath, s.urlExpiry)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("username", session.Username).
		Str("object_path", objectPath).
		Int("rows", len(transactions)).
		Msg("Export archived")

	return &domain.ExportArchive{
		ObjectPath:  objectPath,
		DownloadURL: url,
		ExpiresAt:   s.now().UTC().Add(s.urlExpiry),
	}, nil
}

// capitalizeType upper-cases the first character only, e.g. debt_pay -> Debt_pay
func capitalizeType(t domain.TransactionType) string {
	s := string(t)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
