// Package stream segments a generated text stream into its reasoning and
// result sections and narrates progress for the debug viewer.
//
// Generated output follows a cooperative protocol with the prompt builder:
// a free-text section opened by "REASONING:" followed by a "RESULT:" section
// that contains only JSON. The classifier keys off those literals as they
// arrive fragment by fragment; the extractor applies the same literals to the
// finished text.
package stream

import (
	"regexp"
	"strings"

	"github.com/tripcast/api/internal/models"
)

// Markers delimiting the two sections of generated output. The prompt
// builder asks the model for exactly this structure, so both packages must
// share these literals.
const (
	MarkerReasoning = "REASONING:"
	MarkerResult    = "RESULT:"
)

// minSentenceChars is the trimmed length a sentence must exceed before it is
// narrated. Shorter sentences stay in the accumulated text but produce no
// notification.
const minSentenceChars = 10

// sentenceBoundary ends a sentence: terminal punctuation followed by
// whitespace, or a bare newline.
var sentenceBoundary = regexp.MustCompile(`[.!?]\s+|\n`)

type phase int

const (
	phaseBeforeReasoning phase = iota
	phaseInReasoning
	phaseAfterReasoning
)

// Classifier consumes one generation's fragment sequence and tracks where
// the stream is relative to the reasoning/result markers. It owns no I/O:
// Feed returns the notifications each fragment produced and the caller
// decides where they go. One Classifier serves exactly one generation.
type Classifier struct {
	phase       phase
	accumulated strings.Builder
	pending     string
}

// NewClassifier returns a classifier positioned before the reasoning marker.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Feed appends one fragment and returns the notifications it produced, in
// emission order. Every fragment lands in the accumulated text unchanged
// regardless of phase; the pending buffer accumulates until a marker is
// found, so markers split across fragment boundaries are still detected.
func (c *Classifier) Feed(fragment string) []models.ProgressNotification {
	c.accumulated.WriteString(fragment)
	c.pending += fragment

	switch c.phase {
	case phaseBeforeReasoning:
		if strings.Contains(c.pending, MarkerReasoning) {
			c.phase = phaseInReasoning
			c.pending = ""
			return []models.ProgressNotification{
				models.NewNotification(models.SeverityInfo, "AI started reasoning process..."),
			}
		}
	case phaseInReasoning:
		if strings.Contains(c.pending, MarkerResult) {
			c.phase = phaseAfterReasoning
			c.pending = ""
			return []models.ProgressNotification{
				models.NewNotification(models.SeveritySuccess, "AI completed reasoning..."),
			}
		}
		if strings.ContainsAny(fragment, ".!?\n") {
			return c.drainSentences()
		}
	}
	return nil
}

// drainSentences splits the pending buffer at sentence boundaries, narrates
// every completed sentence long enough to be worth showing, and keeps the
// trailing incomplete piece as the new pending buffer.
func (c *Classifier) drainSentences() []models.ProgressNotification {
	matches := sentenceBoundary.FindAllStringIndex(c.pending, -1)
	if len(matches) == 0 {
		return nil
	}

	var out []models.ProgressNotification
	start := 0
	for _, loc := range matches {
		end := loc[0]
		if isTerminalPunct(c.pending[loc[0]]) {
			end = loc[0] + 1 // keep the punctuation with its sentence
		}
		sentence := strings.TrimSpace(c.pending[start:end])
		if len(sentence) > minSentenceChars {
			out = append(out, models.NewNotification(models.SeverityInfo, "AI: "+sentence))
		}
		start = loc[1]
	}
	c.pending = c.pending[start:]
	return out
}

func isTerminalPunct(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

// Fail reports a mid-stream generator failure. The classifier is done after
// this; the trailing pending buffer is deliberately not flushed.
func (c *Classifier) Fail(err error) models.ProgressNotification {
	c.phase = phaseAfterReasoning
	return models.NewNotification(models.SeverityError, "AI generation failed: "+err.Error())
}

// Accumulated returns everything fed so far, in arrival order.
func (c *Classifier) Accumulated() string {
	return c.accumulated.String()
}
