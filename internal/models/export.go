package models

// ExportType selects the dataset rendered into a report file.
type ExportType string

// ExportFormat selects the file encoding.
type ExportFormat string

const (
	ExportTypeGrades   ExportType = "grades"
	ExportTypeStudents ExportType = "students"

	ExportFormatPDF ExportFormat = "pdf"
	ExportFormatCSV ExportFormat = "csv"
)

// ContentType returns the MIME type served for the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportFormatPDF:
		return "application/pdf"
	case ExportFormatCSV:
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
