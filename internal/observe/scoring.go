package observe

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Automatic score names. The engine emits all four on every call so
// dashboards can rely on a fixed schema.
const (
	ScoreResponseLength = "response_length"
	ScoreDataBacked     = "data_backed"
	ScoreCompleteness   = "completeness"
	ScoreRelevance      = "relevance"
	ScoreUserFeedback   = "user_feedback"
)

// scoreDataFallback is the data_backed value when no data token is found.
// Kept from the reference heuristics; an answer is never scored as having
// strictly zero data-groundedness.
const scoreDataFallback = 0.5

// defaultLengthCap is the word count at which response_length saturates.
const defaultLengthCap = 100

// ScoreRecord is one named quality or feedback signal in [0,1].
type ScoreRecord struct {
	Name    string
	Value   float64
	Comment string
}

// Engine computes deterministic quality scores from question/answer text
// pairs. No external calls, no randomness.
type Engine struct {
	lengthCap int
}

// NewEngine creates a score engine. lengthCap <= 0 selects the default.
func NewEngine(lengthCap int) *Engine {
	if lengthCap <= 0 {
		lengthCap = defaultLengthCap
	}
	return &Engine{lengthCap: lengthCap}
}

// Score computes the four automatic scores for an answer. The result always
// contains all four records, in a fixed order.
func (e *Engine) Score(question, answer string) []ScoreRecord {
	return []ScoreRecord{
		e.responseLength(answer),
		dataBacked(answer),
		completeness(answer),
		relevance(question, answer),
	}
}

func (e *Engine) responseLength(answer string) ScoreRecord {
	words := len(strings.Fields(answer))
	value := float64(words) / float64(e.lengthCap)
	if value > 1.0 {
		value = 1.0
	}
	return ScoreRecord{
		Name:    ScoreResponseLength,
		Value:   value,
		Comment: fmt.Sprintf("Response has %d words", words),
	}
}

// dataTokens are substrings that indicate the answer reports actual query
// results rather than prose alone.
var dataTokens = []string{"query returned", "records", "rows", "average", "total"}

func dataBacked(answer string) ScoreRecord {
	lower := strings.ToLower(answer)

	hasData := strings.ContainsFunc(answer, unicode.IsDigit)
	if !hasData {
		for _, tok := range dataTokens {
			if strings.Contains(lower, tok) {
				hasData = true
				break
			}
		}
	}

	if hasData {
		return ScoreRecord{
			Name:    ScoreDataBacked,
			Value:   1.0,
			Comment: "Response includes actual data",
		}
	}
	return ScoreRecord{
		Name:    ScoreDataBacked,
		Value:   scoreDataFallback,
		Comment: "Response may lack data",
	}
}

// conclusionMarkers signal a concluding or summarizing statement.
var conclusionMarkers = []string{"overall", "in summary", "in conclusion", "recommend", "therefore"}

func completeness(answer string) ScoreRecord {
	lower := strings.ToLower(answer)

	indicators := []bool{
		countSentences(answer) >= 2,
		hasEnumeration(answer),
		len(answer) > 50,
		containsAny(lower, conclusionMarkers),
	}

	satisfied := 0
	for _, ok := range indicators {
		if ok {
			satisfied++
		}
	}

	value := float64(satisfied) / float64(len(indicators))
	return ScoreRecord{
		Name:    ScoreCompleteness,
		Value:   value,
		Comment: fmt.Sprintf("Response completeness: %d/%d indicators", satisfied, len(indicators)),
	}
}

func relevance(question, answer string) ScoreRecord {
	qTokens := meaningfulTokens(question)
	if len(qTokens) == 0 {
		return ScoreRecord{
			Name:    ScoreRelevance,
			Value:   0.0,
			Comment: "Question has no meaningful tokens",
		}
	}

	aTokens := meaningfulTokens(answer)
	overlap := 0
	for tok := range qTokens {
		if _, ok := aTokens[tok]; ok {
			overlap++
		}
	}

	value := float64(overlap) / float64(len(qTokens))
	if value > 1.0 {
		value = 1.0
	}
	return ScoreRecord{
		Name:    ScoreRelevance,
		Value:   value,
		Comment: fmt.Sprintf("Question-response overlap: %d words", overlap),
	}
}

// UserFeedbackScore maps user feedback to a score record. Accepted values:
// "positive" (1.0), "negative" (0.0), or a number in [0,1] passed through
// unchanged. Anything else fails with ErrInvalidFeedback.
func UserFeedbackScore(feedback, comment string) (ScoreRecord, error) {
	switch strings.ToLower(strings.TrimSpace(feedback)) {
	case "positive", "+", "👍":
		return ScoreRecord{
			Name:    ScoreUserFeedback,
			Value:   1.0,
			Comment: strings.TrimSpace("User feedback: Positive. " + comment),
		}, nil
	case "negative", "-", "👎":
		return ScoreRecord{
			Name:    ScoreUserFeedback,
			Value:   0.0,
			Comment: strings.TrimSpace("User feedback: Negative. " + comment),
		}, nil
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(feedback), 64)
	if err != nil {
		return ScoreRecord{}, fmt.Errorf("%w: %q", ErrInvalidFeedback, feedback)
	}
	if value < 0.0 || value > 1.0 {
		return ScoreRecord{}, fmt.Errorf("%w: %v outside [0,1]", ErrInvalidFeedback, value)
	}

	return ScoreRecord{
		Name:    ScoreUserFeedback,
		Value:   value,
		Comment: strings.TrimSpace(fmt.Sprintf("User feedback: %v. %s", value, comment)),
	}, nil
}

func countSentences(s string) int {
	count := 0
	for _, r := range s {
		if r == '.' || r == '!' || r == '?' {
			count++
		}
	}
	return count
}

func hasEnumeration(s string) bool {
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			return true
		}
		if len(trimmed) >= 2 && unicode.IsDigit(rune(trimmed[0])) && (trimmed[1] == '.' || trimmed[1] == ')') {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// stopwords excluded from relevance token matching.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "was": {}, "what": {},
	"which": {}, "how": {}, "with": {}, "that": {}, "this": {}, "from": {},
	"have": {}, "has": {}, "does": {}, "did": {}, "can": {}, "will": {},
}

func meaningfulTokens(s string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, field := range strings.Fields(strings.ToLower(s)) {
		tok := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len(tok) < 3 {
			continue
		}
		if _, skip := stopwords[tok]; skip {
			continue
		}
		tokens[tok] = struct{}{}
	}
	return tokens
}
