package storage

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/pavitra93/menulink/shared/validation"
)

const (
	// PDFContentType is the only accepted upload type
	PDFContentType = "application/pdf"
	// MaxPDFBytes is the default upload size ceiling
	MaxPDFBytes int64 = 10 * 1024 * 1024
)

// ValidatePDF checks the declared type, the size ceiling and the sniffed
// content of an upload. It returns a reader that replays the sniffed bytes.
func ValidatePDF(declaredType string, size, maxBytes int64, r io.Reader) (io.Reader, error) {
	if maxBytes <= 0 {
		maxBytes = MaxPDFBytes
	}

	var errs validation.Errors
	mediaType := strings.TrimSpace(strings.SplitN(declaredType, ";", 2)[0])
	if !strings.EqualFold(mediaType, PDFContentType) {
		errs.Add("file", "Only PDF files are allowed")
	}
	if size <= 0 {
		errs.Add("file", "Please select a PDF file to upload")
	} else if size > maxBytes {
		errs.Add("file", fmt.Sprintf("File must be %d MB or smaller", maxBytes/(1024*1024)))
	}
	if errs.Any() {
		return nil, errs
	}

	head := make([]byte, 3072)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	if !mimetype.Detect(head).Is(PDFContentType) {
		errs.Add("file", "File content is not a PDF")
		return nil, errs
	}
	return io.MultiReader(bytes.NewReader(head), r), nil
}
