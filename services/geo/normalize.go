package geo

import "strings"

var diacriticReplacer = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ä", "a", "ã", "a", "å", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"í", "i", "ì", "i", "î", "i", "ï", "i",
	"ó", "o", "ò", "o", "ô", "o", "ö", "o", "õ", "o", "ø", "o",
	"ú", "u", "ù", "u", "û", "u", "ü", "u",
	"ý", "y", "ÿ", "y",
	"ç", "c", "ñ", "n", "ß", "ss", "æ", "ae", "œ", "oe",
)

// NormalizeKey folds free-text locale input into the canonical lookup key:
// lower case, trimmed, diacritics folded, punctuation and whitespace removed.
func NormalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = diacriticReplacer.Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	return b.String()
}
