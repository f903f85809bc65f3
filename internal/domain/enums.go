package domain

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeJPG  FileType = "jpg"
	FileTypePNG  FileType = "png"
	FileTypeJSON FileType = "json"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF:  "application/pdf",
	FileTypeJPG:  "image/jpeg",
	FileTypePNG:  "image/png",
	FileTypeJSON: "application/json",
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
	"json": FileTypeJSON,
}

// DocumentType names the two trade documents being reconciled.
type DocumentType string

const (
	DocumentTypeInvoice      DocumentType = "invoice"
	DocumentTypeBillOfLading DocumentType = "bill_of_lading"
)

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	return t == DocumentTypeInvoice || t == DocumentTypeBillOfLading
}

// Label is the human-readable name used in notes and reports.
func (t DocumentType) Label() string {
	switch t {
	case DocumentTypeInvoice:
		return "commercial invoice"
	case DocumentTypeBillOfLading:
		return "bill of lading"
	default:
		return string(t)
	}
}

// SessionStatus is the lifecycle of a comparison session.
type SessionStatus string

const (
	SessionStatusProcessing SessionStatus = "processing"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusFailed     SessionStatus = "failed"
)

// ExportFormat is a report rendering.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatJSON ExportFormat = "json"
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatPDF  ExportFormat = "pdf"
)
