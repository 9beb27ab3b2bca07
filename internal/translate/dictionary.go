package translate

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NotFound is returned when neither the remote service nor the local
// dictionary can translate a phrase.
const NotFound = "Translation not found"

// englishGerman lists the built-in phrase pairs. The German → English table is
// derived from it; the first English phrase wins when German repeats.
var englishGerman = [][2]string{
	{"hello", "hallo"},
	{"hi", "hallo"},
	{"good morning", "guten morgen"},
	{"good day", "guten tag"},
	{"good evening", "guten abend"},
	{"good night", "gute nacht"},
	{"goodbye", "auf wiedersehen"},
	{"bye", "tschüss"},
	{"please", "bitte"},
	{"thank you", "danke"},
	{"thank you very much", "vielen dank"},
	{"yes", "ja"},
	{"no", "nein"},
	{"excuse me", "entschuldigung"},
	{"how are you", "wie geht es dir"},
	{"i am fine", "mir geht es gut"},
	{"what is your name", "wie heißt du"},
	{"i don't understand", "ich verstehe nicht"},
	{"do you speak english", "sprichst du englisch"},
	{"where is the train station", "wo ist der bahnhof"},
	{"how much does it cost", "wie viel kostet das"},
	{"i love you", "ich liebe dich"},
	{"see you later", "bis später"},
	{"water", "wasser"},
	{"bread", "brot"},
	{"coffee", "kaffee"},
	{"house", "haus"},
	{"cat", "katze"},
	{"dog", "hund"},
	{"book", "buch"},
	{"friend", "freund"},
}

// Dictionary is a bidirectional English ↔ German phrase table.
// Lookups are exact after case folding and dropping trailing punctuation.
type Dictionary struct {
	tables map[string]map[string]string
}

func NewDictionary() *Dictionary {
	return NewDictionaryFrom(englishGerman)
}

// NewDictionaryFrom builds a dictionary from English → German pairs.
func NewDictionaryFrom(pairs [][2]string) *Dictionary {
	enDe := make(map[string]string, len(pairs))
	deEn := make(map[string]string, len(pairs))
	for _, p := range pairs {
		en, de := normalizePhrase(p[0]), normalizePhrase(p[1])
		if _, ok := enDe[en]; !ok {
			enDe[en] = p[1]
		}
		if _, ok := deEn[de]; !ok {
			deEn[de] = p[0]
		}
	}
	return &Dictionary{tables: map[string]map[string]string{
		"en:de": enDe,
		"de:en": deEn,
	}}
}

// directions lists the supported table pairs in lookup order.
var directions = [][2]string{{"en", "de"}, {"de", "en"}}

// Lookup translates text between the given languages. An empty or "auto"
// language matches either side. Unsupported language pairs and unknown
// phrases report false.
func (d *Dictionary) Lookup(text, sourceLang, targetLang string) (string, bool) {
	src, dst := baseLanguage(sourceLang), baseLanguage(targetLang)
	key := normalizePhrase(text)
	for _, dir := range directions {
		if (src != "" && src != dir[0]) || (dst != "" && dst != dir[1]) {
			continue
		}
		if out, ok := d.tables[dir[0]+":"+dir[1]][key]; ok {
			return out, true
		}
	}
	return "", false
}

func normalizePhrase(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ".!?")
	return cases.Fold().String(strings.TrimSpace(s))
}

// baseLanguage reduces tags like "de-DE" or "EN" to their base subtag.
// Empty and "auto" yield "", meaning the language is not pinned.
func baseLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" || lang == "auto" {
		return ""
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	base, _ := tag.Base()
	return base.String()
}
