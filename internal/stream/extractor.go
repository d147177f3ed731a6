package stream

import (
	"strings"

	"github.com/tripcast/api/internal/models"
)

// summaryChars caps how much reasoning the final notification repeats.
const summaryChars = 200

// Extract partitions a finished generation into reasoning and result on the
// first result marker. Text before the marker, minus a leading reasoning
// marker, becomes the reasoning; everything after becomes the result. When
// the model never produced a result marker the whole text is treated as the
// result. Pure and idempotent.
func Extract(accumulated string) models.ExtractedResult {
	idx := strings.Index(accumulated, MarkerResult)
	if idx < 0 {
		return models.ExtractedResult{
			ResultText: strings.TrimSpace(accumulated),
		}
	}

	reasoning := strings.TrimSpace(accumulated[:idx])
	reasoning = strings.TrimSpace(strings.TrimPrefix(reasoning, MarkerReasoning))

	return models.ExtractedResult{
		ReasoningText: reasoning,
		ResultText:    strings.TrimSpace(accumulated[idx+len(MarkerResult):]),
	}
}

// Summary builds the final success notification repeating the start of the
// model's reasoning. Returns nil when there is no reasoning to repeat.
func Summary(result models.ExtractedResult) *models.ProgressNotification {
	if result.ReasoningText == "" {
		return nil
	}

	text := result.ReasoningText
	if runes := []rune(text); len(runes) > summaryChars {
		text = string(runes[:summaryChars]) + "..."
	}

	n := models.NewNotification(models.SeveritySuccess, "AI reasoning: "+text)
	return &n
}
