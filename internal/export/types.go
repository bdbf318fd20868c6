// Package export renders the tracked objectives into a progress report and
// ships it as a PDF.
package export

import "errors"

// Format represents the export output format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
)

// Request contains parameters for a report export. Zero values mean "all";
// an empty Format means PDF.
type Request struct {
	Format  Format
	Group   string
	Year    int
	Quarter int
}

// Result contains the export output.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

// ErrPDFDependencyMissing indicates PDF export runtime dependencies are unavailable.
var ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
