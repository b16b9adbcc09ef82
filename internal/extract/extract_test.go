package extract

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kalambet/intake/internal/apperr"
	"github.com/kalambet/intake/internal/storage"
)

// memLog records appended records in memory.
type memLog struct {
	records []storage.NewRecord
	err     error
}

func (m *memLog) AppendRecord(r storage.NewRecord) (storage.Record, error) {
	if m.err != nil {
		return storage.Record{}, m.err
	}
	m.records = append(m.records, r)
	return storage.Record{ID: int64(len(m.records)), ConversationID: r.ConversationID}, nil
}

// payload round-trips the last record's data through JSON.
func (m *memLog) payload(t *testing.T) map[string]any {
	t.Helper()
	if len(m.records) == 0 {
		t.Fatal("no record was appended")
	}
	b, err := json.Marshal(m.records[len(m.records)-1].ExtractedData)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	return out
}

type fakeReader struct {
	text string
	err  error
}

func (f fakeReader) ReadText(string) (string, error) { return f.text, f.err }

func strp(s string) *string { return &s }

func TestExtractText_InvoiceFields(t *testing.T) {
	log := &memLog{}
	e := New(log, nil)

	res, err := e.ExtractText("Invoice Number: INV-102, Date: 2024-03-01, Total Amount: $450.00", Options{Source: "test", ConversationID: "c1"})
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}

	want := InvoiceFields{InvoiceID: strp("INV-102"), InvoiceDate: strp("2024-03-01"), Amount: strp("450.00")}
	if !reflect.DeepEqual(res.Data, want) {
		t.Errorf("Data = %+v, want %+v", res.Data, want)
	}
	if res.Type != "Invoice" {
		t.Errorf("Type = %q, want Invoice", res.Type)
	}
	if len(res.Missing) != 0 {
		t.Errorf("Missing = %v, want none", res.Missing)
	}
	if res.SessionID != "c1" {
		t.Errorf("SessionID = %q, want c1", res.SessionID)
	}

	rec := log.records[0]
	if rec.Format != "PDF" || rec.Source != "test" || rec.ConversationID != "c1" {
		t.Errorf("record = %+v", rec)
	}
	p := log.payload(t)
	if _, ok := p["session_id"]; ok {
		t.Error("record payload must not carry session_id")
	}
	if p["type"] != "Invoice" {
		t.Errorf("payload type = %v", p["type"])
	}
}

func TestExtractText_MissingFields(t *testing.T) {
	log := &memLog{}
	res, err := New(log, nil).ExtractText("The unit arrived damaged.", Options{})
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if res.Type != "Support Case" {
		t.Errorf("Type = %q, want Support Case", res.Type)
	}
	want := []string{"invoice_id", "invoice_date", "amount"}
	if !reflect.DeepEqual(res.Missing, want) {
		t.Errorf("Missing = %v, want %v", res.Missing, want)
	}
	if res.SessionID == "" {
		t.Error("SessionID should be generated when none is given")
	}
	data := log.payload(t)["data"].(map[string]any)
	for _, k := range want {
		if v, ok := data[k]; !ok || v != nil {
			t.Errorf("data[%s] = %v, want null", k, v)
		}
	}
}

func TestClassifyDocument(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"INVOICE #4", "Invoice"},
		{"the total is wrong and I have a complaint", "Invoice"},
		{"We have a problem with delivery", "Support Case"},
		{"Request for Quotation: steel beams", "Price Request"},
		{"New data retention policy", "Compliance Doc"},
		{"hello there", "Miscellaneous"},
		{"", "Miscellaneous"},
	}
	for _, tt := range tests {
		got := ClassifyDocument(tt.text)
		if got != tt.want {
			t.Errorf("ClassifyDocument(%q) = %q, want %q", tt.text, got, tt.want)
		}
		if again := ClassifyDocument(tt.text); again != got {
			t.Errorf("ClassifyDocument(%q) not stable: %q then %q", tt.text, got, again)
		}
	}
}

func TestExtractPDF_ReadErrorPropagates(t *testing.T) {
	log := &memLog{}
	e := New(log, fakeReader{err: errors.New("corrupt xref")})

	_, err := e.ExtractPDF("broken.pdf", Options{ConversationID: "c"})
	if !apperr.Is(err, apperr.DocumentReadError) {
		t.Errorf("error = %v, want DocumentReadError", err)
	}
	if len(log.records) != 0 {
		t.Errorf("%d records written on read failure, want 0", len(log.records))
	}
}

func TestExtractPDF_UsesReaderText(t *testing.T) {
	log := &memLog{}
	e := New(log, fakeReader{text: "Invoice Number: A-1\nTotal Amount: 1,200.50"})

	res, err := e.ExtractPDF("a.pdf", Options{ConversationID: "c"})
	if err != nil {
		t.Fatalf("ExtractPDF: %v", err)
	}
	if res.Data.InvoiceID == nil || *res.Data.InvoiceID != "A-1" {
		t.Errorf("InvoiceID = %v", res.Data.InvoiceID)
	}
	if res.Data.Amount == nil || *res.Data.Amount != "1,200.50" {
		t.Errorf("Amount = %v", res.Data.Amount)
	}
	if !reflect.DeepEqual(res.Missing, []string{"invoice_date"}) {
		t.Errorf("Missing = %v", res.Missing)
	}
	if res.Text == "" {
		t.Error("Text should carry the document text")
	}
}

func TestPDFReader_Errors(t *testing.T) {
	dir := t.TempDir()
	notPDF := filepath.Join(dir, "note.pdf")
	if err := os.WriteFile(notPDF, []byte("just some text"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{filepath.Join(dir, "missing.pdf"), notPDF} {
		_, err := PDFReader{}.ReadText(path)
		if !apperr.Is(err, apperr.DocumentReadError) {
			t.Errorf("ReadText(%s) error = %v, want DocumentReadError", filepath.Base(path), err)
		}
	}
}

func TestExtract_StoreWriteFailure(t *testing.T) {
	storeErr := apperr.Errorf(apperr.StoreWriteError, "append record", "disk I/O error")
	e := New(&memLog{err: storeErr}, nil)

	if _, err := e.ExtractText("x", Options{}); !apperr.Is(err, apperr.StoreWriteError) {
		t.Errorf("ExtractText error = %v", err)
	}
	if _, err := e.ExtractOrder(map[string]any{}, Options{}); !apperr.Is(err, apperr.StoreWriteError) {
		t.Errorf("ExtractOrder error = %v", err)
	}
	if _, err := e.ExtractEmail("x", Options{}); !apperr.Is(err, apperr.StoreWriteError) {
		t.Errorf("ExtractEmail error = %v", err)
	}
}
