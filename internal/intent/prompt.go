package intent

import (
	"fmt"
	"strings"
)

// maxPromptRunes bounds how much of the document reaches the model.
const maxPromptRunes = 1000

const promptTemplate = `Classify the following text into exactly one of these categories: %s.
Respond only with the category name.

Text: %s`

// BuildPrompt returns the classification prompt for text. Only the first
// 1000 characters of text are included.
func BuildPrompt(text string) string {
	names := make([]string, len(Labels))
	for i, l := range Labels {
		names[i] = string(l)
	}
	return fmt.Sprintf(promptTemplate, strings.Join(names, ", "), truncate(text, maxPromptRunes))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
