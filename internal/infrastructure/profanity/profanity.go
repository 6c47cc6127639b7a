// package profanity screens player speech before it reaches the event bus.
// The match is deliberately loose: leetspeak substitutions and separator
// padding are normalized away before the word list is consulted.
package profanity

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

//go:embed words.json
var wordData embed.FS

// leetReplacer undoes the common digit-for-letter obfuscations.
var leetReplacer = strings.NewReplacer(
	"@", "a", "4", "a",
	"3", "e",
	"1", "i", "!", "i", "|", "i",
	"0", "o",
	"$", "s", "5", "s",
	"7", "t", "+", "t",
	"9", "g",
	"8", "b",
)

var separators = regexp.MustCompile(`[\s_.\-*/\\|]+`)

// ProfanityFilter matches a banned-word list against normalized text.
type ProfanityFilter struct {
	regex *regexp.Regexp
}

// NewProfanityFilter compiles the embedded word list. The list is small and
// the regexp is built once, so callers may construct filters freely.
func NewProfanityFilter() *ProfanityFilter {
	words, err := loadBannedWords()
	if err != nil {
		panic(fmt.Sprintf("profanity: %v", err))
	}

	return &ProfanityFilter{regex: compileWordList(words)}
}

// ContainsProfanity reports whether the text matches the banned list after
// normalization.
func (pf *ProfanityFilter) ContainsProfanity(text string) bool {
	if text == "" {
		return false
	}
	return pf.regex.MatchString(normalize(text))
}

func loadBannedWords() ([]string, error) {
	data, err := wordData.ReadFile("words.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded word list: %w", err)
	}

	var words []string
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("failed to parse word list: %w", err)
	}

	return words, nil
}

// normalize lowercases, strips leetspeak and collapses separator runs so
// "F.u_c-k" and "fuck" hit the same pattern.
func normalize(text string) string {
	s := strings.ToLower(text)
	s = leetReplacer.Replace(s)
	return separators.ReplaceAllString(s, " ")
}

// compileWordList builds one alternation over the list. Each word tolerates
// non-letter noise between its letters but must sit at a non-letter boundary,
// so "class" never trips the "ass" entry.
func compileWordList(words []string) *regexp.Regexp {
	patterns := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(strings.ToLower(w))
		if w == "" {
			continue
		}

		letters := strings.Split(regexp.QuoteMeta(w), "")
		patterns = append(patterns, strings.Join(letters, `[^a-z]*`))
	}

	return regexp.MustCompile(`(?:^|[^a-z])(` + strings.Join(patterns, "|") + `)(?:$|[^a-z])`)
}
