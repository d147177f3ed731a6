package stream

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripcast/api/internal/models"
)

func TestExtractSplitsOnResultMarker(t *testing.T) {
	got := Extract(`REASONING: close and affordable. RESULT: [{"name":"X"}]`)

	assert.Equal(t, "close and affordable.", got.ReasoningText)
	assert.Equal(t, `[{"name":"X"}]`, got.ResultText)
}

func TestExtractSplitsOnFirstMarkerOnly(t *testing.T) {
	got := Extract("REASONING: step one. RESULT: [1] RESULT: [2]")

	assert.Equal(t, "step one.", got.ReasoningText)
	assert.Equal(t, "[1] RESULT: [2]", got.ResultText)
}

func TestExtractWithoutReasoningPrefix(t *testing.T) {
	got := Extract("some prelude text RESULT: [42]")

	assert.Equal(t, "some prelude text", got.ReasoningText)
	assert.Equal(t, "[42]", got.ResultText)
}

func TestExtractFallsBackToWholeText(t *testing.T) {
	got := Extract("  the model ignored the format entirely  ")

	assert.Empty(t, got.ReasoningText)
	assert.Equal(t, "the model ignored the format entirely", got.ResultText)
}

func TestExtractIsIdempotent(t *testing.T) {
	first := Extract(`REASONING: because it fits. RESULT: [{"name":"X"}]`)

	// re-extracting the already-split result must hand it back untouched
	second := Extract(first.ResultText)
	assert.Equal(t, first.ResultText, second.ResultText)
	assert.Empty(t, second.ReasoningText)
}

func TestExtractEmptyInput(t *testing.T) {
	got := Extract("")
	assert.Empty(t, got.ReasoningText)
	assert.Empty(t, got.ResultText)
}

func TestSummaryRepeatsShortReasoning(t *testing.T) {
	n := Summary(models.ExtractedResult{ReasoningText: "picked the two closest spots."})
	require.NotNil(t, n)

	assert.Equal(t, models.SeveritySuccess, n.Severity)
	assert.Equal(t, "AI reasoning: picked the two closest spots.", n.Message)
}

func TestSummaryTruncatesLongReasoning(t *testing.T) {
	long := strings.Repeat("reasoning ", 40) // 400 chars
	n := Summary(models.ExtractedResult{ReasoningText: long})
	require.NotNil(t, n)

	assert.Equal(t, "AI reasoning: "+long[:200]+"...", n.Message)
}

func TestSummaryNilWithoutReasoning(t *testing.T) {
	assert.Nil(t, Summary(models.ExtractedResult{ResultText: "[1,2,3]"}))
}
