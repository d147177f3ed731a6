package stream

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripcast/api/internal/models"
)

func feedAll(c *Classifier, fragments []string) []models.ProgressNotification {
	var out []models.ProgressNotification
	for _, f := range fragments {
		out = append(out, c.Feed(f)...)
	}
	return out
}

func TestClassifierMarkersSplitAcrossFragments(t *testing.T) {
	fragments := []string{"REAS", "ONING:", " hello world. ", "more text. ", "RE", "SULT: [1,2,3]"}

	c := NewClassifier()
	got := feedAll(c, fragments)

	require.Len(t, got, 3)

	assert.Equal(t, models.SeverityInfo, got[0].Severity)
	assert.Equal(t, "AI started reasoning process...", got[0].Message)

	assert.Equal(t, models.SeverityInfo, got[1].Severity)
	assert.Equal(t, "AI: hello world.", got[1].Message)

	assert.Equal(t, models.SeveritySuccess, got[2].Severity)
	assert.Equal(t, "AI completed reasoning...", got[2].Message)

	assert.Equal(t, strings.Join(fragments, ""), c.Accumulated())
}

func TestClassifierSentenceLengthThreshold(t *testing.T) {
	cases := []struct {
		name     string
		sentence string
		emitted  bool
	}{
		// trimmed lengths 10 and 11 sit on either side of the cutoff
		{"ten chars dropped", "more text.", false},
		{"eleven chars emitted", "more texts.", true},
		{"short fluff dropped", "Ok.", false},
		{"long sentence emitted", "This one is certainly long enough.", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewClassifier()
			c.Feed("REASONING: ")

			got := c.Feed(tc.sentence + " ")
			if tc.emitted {
				require.Len(t, got, 1)
				assert.Equal(t, "AI: "+tc.sentence, got[0].Message)
				assert.Equal(t, models.SeverityInfo, got[0].Severity)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestClassifierSilentBeforeReasoningMarker(t *testing.T) {
	c := NewClassifier()

	got := c.Feed("Some chatter before any marker shows up. More of it!\n")
	assert.Empty(t, got)

	// the text still counts toward the accumulated stream
	assert.Contains(t, c.Accumulated(), "chatter")
}

func TestClassifierBuffersUntilTerminatorArrives(t *testing.T) {
	c := NewClassifier()
	c.Feed("REASONING: ")

	assert.Empty(t, c.Feed("an unfinished "))
	assert.Empty(t, c.Feed("thought"))

	got := c.Feed(". And")
	require.Len(t, got, 1)
	assert.Equal(t, "AI: an unfinished thought.", got[0].Message)
}

func TestClassifierSplitsMultipleSentencesInOneFragment(t *testing.T) {
	c := NewClassifier()
	c.Feed("REASONING: ")

	got := c.Feed("First complete idea. Second complete idea! An unfinished tail")
	require.Len(t, got, 2)
	assert.Equal(t, "AI: First complete idea.", got[0].Message)
	assert.Equal(t, "AI: Second complete idea!", got[1].Message)

	// the tail waits for its terminator
	got = c.Feed(" that now ends.\n")
	require.Len(t, got, 1)
	assert.Equal(t, "AI: An unfinished tail that now ends.", got[0].Message)
}

func TestClassifierNewlineEndsSentence(t *testing.T) {
	c := NewClassifier()
	c.Feed("REASONING: ")

	got := c.Feed("a line without punctuation\nnext line starts")
	require.Len(t, got, 1)
	assert.Equal(t, "AI: a line without punctuation", got[0].Message)
}

func TestClassifierMarkerClearsWholePendingBuffer(t *testing.T) {
	c := NewClassifier()

	// everything in the buffer goes when the marker lands, including text
	// after the marker itself
	got := c.Feed("intro words REASONING: trailing words that never notify ")
	require.Len(t, got, 1)
	assert.Equal(t, "AI started reasoning process...", got[0].Message)

	// a fresh sentence is narrated from scratch
	got = c.Feed("A brand new sentence. ")
	require.Len(t, got, 1)
	assert.Equal(t, "AI: A brand new sentence.", got[0].Message)
}

func TestClassifierQuietAfterResultMarker(t *testing.T) {
	c := NewClassifier()
	c.Feed("REASONING: thinking it through. ")
	c.Feed("RESULT: ")

	got := c.Feed(`[{"name":"X"}] and some trailing prose. `)
	assert.Empty(t, got)

	assert.True(t, strings.HasSuffix(c.Accumulated(), "trailing prose. "))
}

func TestClassifierDotWithoutWhitespaceDoesNotSplit(t *testing.T) {
	c := NewClassifier()
	c.Feed("REASONING: ")

	// decimal point triggers the scan but matches no boundary
	assert.Empty(t, c.Feed("the price is 3.50"))

	got := c.Feed(" dollars per ticket. ")
	require.Len(t, got, 1)
	assert.Equal(t, "AI: the price is 3.50 dollars per ticket.", got[0].Message)
}

func TestClassifierTrailingBufferNeverFlushed(t *testing.T) {
	c := NewClassifier()
	c.Feed("REASONING: ")

	got := c.Feed("this sentence never terminates")
	assert.Empty(t, got)

	// stream ends here; the remainder is only visible via Accumulated
	assert.Contains(t, c.Accumulated(), "never terminates")
}

func TestClassifierFail(t *testing.T) {
	c := NewClassifier()
	c.Feed("REASONING: partway through. ")

	n := c.Fail(errors.New("connection reset"))
	assert.Equal(t, models.SeverityError, n.Severity)
	assert.Contains(t, n.Message, "connection reset")
	assert.False(t, n.Timestamp.IsZero())
}
