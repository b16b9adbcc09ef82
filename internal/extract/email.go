package extract

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var senderPattern = regexp.MustCompile(`[\w.-]+@[\w.-]+`)

const unknownSender = "sender_unknown"

// Priorities are checked in order, so a message with both high and low
// indicators is High.
var priorities = []keywordGroup{
	{"High", []string{"urgent", "critical", "immediate", "crucial", "emergency"}},
	{"Low", []string{"flexible", "when possible", "at your convenience", "not pressing"}},
}

const defaultPriority = "Standard"

var emailCategories = []keywordGroup{
	{"Price Request", []string{"price", "quote", "cost estimate", "rates"}},
	{"Support Case", []string{"help needed", "not working", "malfunction", "broken"}},
	{"Billing Query", []string{"payment", "invoice", "billing", "charge"}},
	{"Compliance", []string{"legal", "requirement", "standard", "protocol"}},
}

const defaultEmailCategory = "Misc"

// EmailResult is the output of the email extractor.
type EmailResult struct {
	From     string `json:"from"`
	Priority string `json:"priority"`
	Category string `json:"category"`
	ThreadID string `json:"thread_id"`
}

type emailPayload struct {
	From     string `json:"from"`
	Priority string `json:"priority"`
	Category string `json:"category"`
}

// ExtractEmail pulls the sender, priority and category out of a raw message.
// Keywords are matched against the raw text first.
func (e *Extractor) ExtractEmail(text string, opts Options) (EmailResult, error) {
	res := EmailResult{
		From:     FindSender(text),
		ThreadID: opts.conversationID(),
	}

	res.Priority = AssessPriority(text)
	res.Category = ClassifyEmail(text)

	// A keyword split by markup, as in "not <b>working</b>", only matches
	// once the tags are gone, so HTML messages get a second pass.
	if isHTML(text) && (res.Priority == defaultPriority || res.Category == defaultEmailCategory) {
		visible := htmlText(text)
		if res.Priority == defaultPriority {
			res.Priority = AssessPriority(visible)
		}
		if res.Category == defaultEmailCategory {
			res.Category = ClassifyEmail(visible)
		}
	}

	payload := emailPayload{From: res.From, Priority: res.Priority, Category: res.Category}
	if err := e.append("Email", opts.Source, res.ThreadID, payload); err != nil {
		return EmailResult{}, err
	}
	return res, nil
}

// FindSender returns the first address-shaped token in text.
func FindSender(text string) string {
	if m := senderPattern.FindString(text); m != "" {
		return m
	}
	return unknownSender
}

// AssessPriority returns High, Low or Standard.
func AssessPriority(text string) string {
	return matchFirst(priorities, text, defaultPriority)
}

// ClassifyEmail returns the message category, Misc if no keyword matches.
func ClassifyEmail(text string) string {
	return matchFirst(emailCategories, text, defaultEmailCategory)
}

func isHTML(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<body")
}

// htmlText returns the text of an HTML message, title included and scripts
// and stylesheets left out. On a parse error the input is returned unchanged.
func htmlText(src string) string {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return src
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style:
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return sb.String()
}
