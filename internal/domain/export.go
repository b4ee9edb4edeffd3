package domain

import (
	"context"
	"io"
	"time"
)

// Spreadsheet export constants
const (
	ExportFileName    = "transactions.xlsx"
	ExportSheetName   = "Transactions"
	ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportColumns is the fixed column set of an export
var ExportColumns = []string{"Date", "Description", "Type", "Amount"}

// ExportArchive is an uploaded export with a temporary download link
type ExportArchive struct {
	ObjectPath  string    `json:"objectPath"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// ExportRepository stores exported workbooks
type ExportRepository interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}
