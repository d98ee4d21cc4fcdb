package observe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Score(t *testing.T) {
	engine := NewEngine(0)

	t.Run("always returns all four scores", func(t *testing.T) {
		records := engine.Score("question", "answer")
		require.Len(t, records, 4)
		assert.Equal(t, ScoreResponseLength, records[0].Name)
		assert.Equal(t, ScoreDataBacked, records[1].Name)
		assert.Equal(t, ScoreCompleteness, records[2].Name)
		assert.Equal(t, ScoreRelevance, records[3].Name)
	})

	t.Run("all values stay in range for arbitrary inputs", func(t *testing.T) {
		pairs := [][2]string{
			{"", ""},
			{"question?", ""},
			{"", "answer"},
			{"what is the yield", "The average yield is 3.2 MT per HA."},
			{strings.Repeat("word ", 500), strings.Repeat("data 42. ", 500)},
			{"ünïcode?", "ünïcode answer 12%"},
		}

		for _, pair := range pairs {
			for _, rec := range engine.Score(pair[0], pair[1]) {
				assert.GreaterOrEqual(t, rec.Value, 0.0, "score %s for %q", rec.Name, pair[1])
				assert.LessOrEqual(t, rec.Value, 1.0, "score %s for %q", rec.Name, pair[1])
			}
		}
	})

	t.Run("response_length saturates at the cap", func(t *testing.T) {
		short := engine.Score("q", "three short words")[0]
		assert.InDelta(t, 0.03, short.Value, 0.001)

		long := engine.Score("q", strings.Repeat("word ", 150))[0]
		assert.Equal(t, 1.0, long.Value)
	})

	t.Run("response_length honors a custom cap", func(t *testing.T) {
		small := NewEngine(10)
		rec := small.Score("q", strings.Repeat("word ", 10))[0]
		assert.Equal(t, 1.0, rec.Value)
	})

	t.Run("data_backed is never zero", func(t *testing.T) {
		answers := []string{"", "no numbers here at all", "Query returned nothing", "prose only"}
		for _, answer := range answers {
			rec := engine.Score("q", answer)[1]
			assert.GreaterOrEqual(t, rec.Value, 0.5, "answer %q", answer)
		}
	})

	t.Run("data_backed detects numerals and data tokens", func(t *testing.T) {
		assert.Equal(t, 1.0, engine.Score("q", "The yield was 3.2 MT")[1].Value)
		assert.Equal(t, 1.0, engine.Score("q", "Query returned many rows")[1].Value)
		assert.Equal(t, 0.5, engine.Score("q", "no data here")[1].Value)
	})

	t.Run("completeness is monotonic in satisfied indicators", func(t *testing.T) {
		// Each answer adds one structural indicator to the previous one.
		answers := []string{
			"short",
			"This answer is long enough to pass the substantial length bar easily",
			"This answer is long enough to pass the substantial length bar. It also has two sentences.",
			"This answer is long enough to pass the substantial length bar. It also has two sentences.\n- and a bullet point",
			"This answer is long enough to pass the substantial length bar. It also has two sentences.\n- and a bullet point\nOverall, yields declined.",
		}

		prev := -1.0
		for _, answer := range answers {
			value := engine.Score("q", answer)[2].Value
			assert.GreaterOrEqual(t, value, prev, "answer %q", answer)
			prev = value
		}
		assert.Equal(t, 1.0, prev)
	})

	t.Run("relevance measures distinct token overlap", func(t *testing.T) {
		full := engine.Score("crop yield India", "India crop yield data shown")[3]
		assert.Equal(t, 1.0, full.Value)

		none := engine.Score("crop yield India", "completely unrelated text")[3]
		assert.Equal(t, 0.0, none.Value)

		empty := engine.Score("", "some answer")[3]
		assert.Equal(t, 0.0, empty.Value)
	})

	t.Run("relevance ignores stopwords and short tokens", func(t *testing.T) {
		rec := engine.Score("what is the a b", "what the")[3]
		assert.Equal(t, 0.0, rec.Value)
	})
}

func TestUserFeedbackScore(t *testing.T) {
	t.Run("positive maps to 1.0", func(t *testing.T) {
		rec, err := UserFeedbackScore("positive", "")
		require.NoError(t, err)
		assert.Equal(t, ScoreUserFeedback, rec.Name)
		assert.Equal(t, 1.0, rec.Value)
	})

	t.Run("negative maps to 0.0", func(t *testing.T) {
		rec, err := UserFeedbackScore("negative", "too vague")
		require.NoError(t, err)
		assert.Equal(t, 0.0, rec.Value)
		assert.Contains(t, rec.Comment, "too vague")
	})

	t.Run("numeric value passes through unchanged", func(t *testing.T) {
		rec, err := UserFeedbackScore("0.37", "")
		require.NoError(t, err)
		assert.Equal(t, 0.37, rec.Value)
	})

	t.Run("boundary values are accepted", func(t *testing.T) {
		for _, v := range []string{"0", "1", "0.0", "1.0"} {
			_, err := UserFeedbackScore(v, "")
			assert.NoError(t, err, "value %q", v)
		}
	})

	t.Run("out of range value fails", func(t *testing.T) {
		_, err := UserFeedbackScore("1.5", "")
		assert.ErrorIs(t, err, ErrInvalidFeedback)

		_, err = UserFeedbackScore("-0.1", "")
		assert.ErrorIs(t, err, ErrInvalidFeedback)
	})

	t.Run("non-numeric garbage fails", func(t *testing.T) {
		_, err := UserFeedbackScore("great", "")
		assert.ErrorIs(t, err, ErrInvalidFeedback)
	})
}
