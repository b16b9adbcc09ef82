package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/kalambet/intake/internal/apperr"
)

// TextReader returns the full text of the document at path, pages
// concatenated in order.
type TextReader interface {
	ReadText(path string) (string, error)
}

// PDFReader reads PDF files from disk. The file structure is validated with
// pdfcpu before page text is pulled out with ledongthuc/pdf.
type PDFReader struct{}

// ReadText implements TextReader. Every failure carries DocumentReadError.
func (PDFReader) ReadText(path string) (string, error) {
	const op = "read pdf"

	if err := validatePDF(path); err != nil {
		return "", apperr.New(apperr.DocumentReadError, op, err)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", apperr.New(apperr.DocumentReadError, op, fmt.Errorf("opening %s: %w", path, err))
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return "", apperr.New(apperr.DocumentReadError, op, fmt.Errorf("page %d: %w", i, err))
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

func validatePDF(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if _, err := api.ReadValidateAndOptimize(f, conf); err != nil {
		return fmt.Errorf("pdfcpu read: %w", err)
	}
	return nil
}
