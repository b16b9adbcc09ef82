package extract

import (
	"regexp"

	"github.com/kalambet/intake/internal/apperr"
)

// Document types assigned by the PDF extractor, checked in this order.
var documentTypes = []keywordGroup{
	{"Invoice", []string{"invoice", "amount due", "billing", "payment due", "total"}},
	{"Support Case", []string{"complaint", "issue", "problem", "not working", "damaged"}},
	{"Price Request", []string{"request for quotation", "quote", "pricing"}},
	{"Compliance Doc", []string{"compliance", "regulation", "policy", "rule"}},
}

const defaultDocumentType = "Miscellaneous"

var (
	invoiceIDPattern   = regexp.MustCompile(`(?i)Invoice Number[:\s]*([A-Za-z0-9\-]+)`)
	invoiceDatePattern = regexp.MustCompile(`(?i)Date[:\s]*([\d/.-]+)`)
	amountPattern      = regexp.MustCompile(`(?i)Total Amount[:\s]*\$?([\d,.]+)`)
)

// InvoiceFields holds the pattern-matched fields of a PDF. A nil field was
// not found.
type InvoiceFields struct {
	InvoiceID   *string `json:"invoice_id"`
	InvoiceDate *string `json:"invoice_date"`
	Amount      *string `json:"amount"`
}

// PDFResult is the output of the PDF extractor.
type PDFResult struct {
	Type      string        `json:"type"`
	Data      InvoiceFields `json:"data"`
	Missing   []string      `json:"missing"`
	SessionID string        `json:"session_id"`

	// Text is the document text the fields were extracted from.
	Text string `json:"-"`
}

type pdfPayload struct {
	Type    string        `json:"type"`
	Data    InvoiceFields `json:"data"`
	Missing []string      `json:"missing"`
}

// ExtractPDF reads the PDF at path and extracts its type and invoice fields.
// Read failures are returned as DocumentReadError and nothing is logged.
func (e *Extractor) ExtractPDF(path string, opts Options) (PDFResult, error) {
	text, err := e.reader.ReadText(path)
	if err != nil {
		if apperr.KindOf(err) == apperr.Unclassified {
			err = apperr.New(apperr.DocumentReadError, "read pdf", err)
		}
		return PDFResult{}, err
	}
	return e.ExtractText(text, opts)
}

// ExtractText runs the PDF extractor over text that was already read.
func (e *Extractor) ExtractText(text string, opts Options) (PDFResult, error) {
	fields := parseInvoiceFields(text)
	res := PDFResult{
		Type:      ClassifyDocument(text),
		Data:      fields,
		Missing:   fields.missing(),
		SessionID: opts.conversationID(),
		Text:      text,
	}

	payload := pdfPayload{Type: res.Type, Data: res.Data, Missing: res.Missing}
	if err := e.append("PDF", opts.Source, res.SessionID, payload); err != nil {
		return PDFResult{}, err
	}
	return res, nil
}

// ClassifyDocument returns the document type of text, Miscellaneous if no
// keyword matches.
func ClassifyDocument(text string) string {
	return matchFirst(documentTypes, text, defaultDocumentType)
}

func parseInvoiceFields(text string) InvoiceFields {
	return InvoiceFields{
		InvoiceID:   firstGroup(invoiceIDPattern, text),
		InvoiceDate: firstGroup(invoiceDatePattern, text),
		Amount:      firstGroup(amountPattern, text),
	}
}

func (f InvoiceFields) missing() []string {
	missing := []string{}
	if f.InvoiceID == nil {
		missing = append(missing, "invoice_id")
	}
	if f.InvoiceDate == nil {
		missing = append(missing, "invoice_date")
	}
	if f.Amount == nil {
		missing = append(missing, "amount")
	}
	return missing
}

func firstGroup(re *regexp.Regexp, text string) *string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return &m[1]
}
