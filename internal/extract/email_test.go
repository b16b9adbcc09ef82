package extract

import "testing"

func TestExtractEmail_UrgentInvoice(t *testing.T) {
	log := &memLog{}
	res, err := New(log, nil).ExtractEmail("This is urgent regarding an invoice payment", Options{Source: "test", ConversationID: "t1"})
	if err != nil {
		t.Fatalf("ExtractEmail: %v", err)
	}
	if res.Priority != "High" {
		t.Errorf("Priority = %q, want High", res.Priority)
	}
	if res.Category != "Billing Query" {
		t.Errorf("Category = %q, want Billing Query", res.Category)
	}
	if res.From != "sender_unknown" {
		t.Errorf("From = %q, want sender_unknown", res.From)
	}
	if res.ThreadID != "t1" {
		t.Errorf("ThreadID = %q, want t1", res.ThreadID)
	}

	rec := log.records[0]
	if rec.Format != "Email" || rec.ConversationID != "t1" {
		t.Errorf("record = %+v", rec)
	}
	p := log.payload(t)
	if _, ok := p["thread_id"]; ok {
		t.Error("record payload must not carry thread_id")
	}
	if p["priority"] != "High" || p["category"] != "Billing Query" || p["from"] != "sender_unknown" {
		t.Errorf("payload = %v", p)
	}
}

func TestFindSender(t *testing.T) {
	tests := []struct{ text, want string }{
		{"From: jane.doe@acme-corp.com\nSubject: hi", "jane.doe@acme-corp.com"},
		{"From: Jane <jane@acme.com>, cc bob@acme.com", "jane@acme.com"},
		{"no address here", "sender_unknown"},
	}
	for _, tt := range tests {
		if got := FindSender(tt.text); got != tt.want {
			t.Errorf("FindSender(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestAssessPriority(t *testing.T) {
	tests := []struct{ text, want string }{
		{"CRITICAL outage", "High"},
		{"reply at your convenience", "Low"},
		{"urgent but flexible", "High"},
		{"hello", "Standard"},
	}
	for _, tt := range tests {
		if got := AssessPriority(tt.text); got != tt.want {
			t.Errorf("AssessPriority(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestClassifyEmail(t *testing.T) {
	tests := []struct{ text, want string }{
		{"Can you send a quote for 40 units?", "Price Request"},
		{"The pump is broken", "Support Case"},
		{"Question about a charge on my account", "Billing Query"},
		{"New legal requirement", "Compliance"},
		{"lunch?", "Misc"},
	}
	for _, tt := range tests {
		if got := ClassifyEmail(tt.text); got != tt.want {
			t.Errorf("ClassifyEmail(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestExtractEmail_HTMLBody(t *testing.T) {
	msg := "From: ops@example.com\nSubject: status\n<html><head><style>.note{color:red}</style></head>" +
		"<body><p>The unit is <b>broken</b>, help needed.</p></body></html>"

	res, err := New(&memLog{}, nil).ExtractEmail(msg, Options{})
	if err != nil {
		t.Fatalf("ExtractEmail: %v", err)
	}
	if res.From != "ops@example.com" {
		t.Errorf("From = %q", res.From)
	}
	if res.Category != "Support Case" {
		t.Errorf("Category = %q, want Support Case", res.Category)
	}
	if res.Priority != "Standard" {
		t.Errorf("Priority = %q, want Standard", res.Priority)
	}
}

func TestExtractEmail_HTMLKeywordsScannedInRawText(t *testing.T) {
	tests := []struct {
		name         string
		msg          string
		wantPriority string
		wantCategory string
	}{
		{
			name:         "keywords in title",
			msg:          "<html><head><title>URGENT: invoice overdue</title></head><body><p>See attached.</p></body></html>",
			wantPriority: "High",
			wantCategory: "Billing Query",
		},
		{
			name:         "keyword in stylesheet",
			msg:          "<html><head><style>.urgent{color:red}</style></head><body>Hello</body></html>",
			wantPriority: "High",
			wantCategory: "Misc",
		},
		{
			name:         "keyword split by markup",
			msg:          "<html><body><p>The printer is not <b>working</b> at all</p></body></html>",
			wantPriority: "Standard",
			wantCategory: "Support Case",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New(&memLog{}, nil).ExtractEmail(tt.msg, Options{})
			if err != nil {
				t.Fatalf("ExtractEmail: %v", err)
			}
			if res.Priority != tt.wantPriority {
				t.Errorf("Priority = %q, want %q", res.Priority, tt.wantPriority)
			}
			if res.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", res.Category, tt.wantCategory)
			}
		})
	}
}
