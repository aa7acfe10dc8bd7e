package lectern

import (
	"regexp"
	"strings"
	"unicode"
)

// chitchatPatterns match greetings, farewells, thanks, and casual questions
// that should never trigger retrieval.
var chitchatPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*(hi|hello|hey|sup|yo|good\s+morning|good\s+evening|good\s+afternoon|greetings)\s*[!.?]*\s*$`),
	regexp.MustCompile(`^\s*(hi|hello|hey)\s+(there|bot|assistant|ta)\s*[!.?]*\s*$`),
	regexp.MustCompile(`^\s*(bye|goodbye|see\s+you|see\s+ya|later|take\s+care|cya)\s*[!.?]*\s*$`),
	regexp.MustCompile(`^\s*(thanks?|thank\s+you|thx|ty|appreciate\s+it)\s*[!.?]*\s*$`),
	regexp.MustCompile(`^\s*(how\s+are\s+you|what'?s\s+up|how'?s\s+it\s+going|how\s+are\s+things)\s*[?!.]*\s*$`),
}

var casualWords = map[string]bool{
	"hi": true, "hello": true, "hey": true, "bye": true,
	"thanks": true, "thx": true, "ty": true, "sup": true, "yo": true,
}

// IsChitchat reports whether a query is casual conversation (or gibberish)
// rather than a question worth retrieving evidence for. Pattern matching
// handles the common phrases; heuristics catch short casual openers,
// repeated-character noise, and mostly non-alphanumeric input.
func IsChitchat(query string) bool {
	stripped := strings.TrimSpace(query)
	if stripped == "" {
		return true
	}
	lower := strings.ToLower(stripped)

	for _, p := range chitchatPatterns {
		if p.MatchString(lower) {
			return true
		}
	}

	words := strings.Fields(stripped)
	if len(words) <= 3 && casualWords[strings.ToLower(words[0])] {
		return true
	}

	// Repetitive characters, e.g. "aaaaaaa" or "hahahaha".
	if len(stripped) > 5 {
		distinct := make(map[rune]bool)
		for _, r := range strings.ReplaceAll(lower, " ", "") {
			distinct[r] = true
		}
		if len(distinct) <= 3 {
			return true
		}
	}

	// Mostly symbols or punctuation.
	alnum := 0
	total := 0
	for _, r := range stripped {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	return float64(alnum)/float64(total) < 0.5
}
