package language

import "strings"

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	code3   string   // ISO 639-2 primary (3-letter)
	alt3    string   // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string   // Human-readable name
	words   []string // Full word forms (e.g. "english")
	vits    bool     // Code supported by the VITS engine
}

var languages = []entry{
	{"en", "eng", "", "English", []string{"english"}, true},
	{"es", "spa", "", "Spanish", []string{"spanish"}, true},
	{"fr", "fra", "fre", "French", []string{"french"}, true},
	{"de", "deu", "ger", "German", []string{"german"}, true},
	{"it", "ita", "", "Italian", []string{"italian"}, true},
	{"pt", "por", "", "Portuguese", []string{"portuguese"}, true},
	{"ja", "jpn", "", "Japanese", []string{"japanese"}, false},
	{"ko", "kor", "", "Korean", []string{"korean"}, false},
	{"zh", "zho", "chi", "Chinese", []string{"chinese"}, false},
	{"ru", "rus", "", "Russian", []string{"russian"}, true},
	{"ar", "ara", "", "Arabic", []string{"arabic"}, false},
	{"hi", "hin", "", "Hindi", []string{"hindi"}, false},
	{"nl", "nld", "dut", "Dutch", []string{"dutch"}, true},
	{"pl", "pol", "", "Polish", []string{"polish"}, true},
	{"sv", "swe", "", "Swedish", []string{"swedish"}, true},
	{"da", "dan", "", "Danish", []string{"danish"}, true},
	{"no", "nor", "", "Norwegian", []string{"norwegian"}, false},
	{"fi", "fin", "", "Finnish", []string{"finnish"}, true},
	{"uk", "ukr", "", "Ukrainian", []string{"ukrainian"}, true},
	{"cs", "ces", "cze", "Czech", []string{"czech"}, true},
	{"hu", "hun", "", "Hungarian", []string{"hungarian"}, true},
	{"el", "ell", "gre", "Greek", []string{"greek"}, true},
	{"tr", "tur", "", "Turkish", []string{"turkish"}, false},
}

// Index maps built at init time.
var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// DirectoryCode maps a top-level library directory name to the ISO 639-2
// code the remote TTS engine expects. The second result is false when the
// directory name is not a recognized language.
func DirectoryCode(name string) (string, bool) {
	e := lookup(name)
	if e == nil {
		return "", false
	}
	return e.code3, true
}

// ToISO3 converts any recognized language code or word to ISO 639-2
// (3-letter). Returns empty string for unrecognized input.
func ToISO3(code string) string {
	e := lookup(code)
	if e == nil {
		return ""
	}
	return e.code3
}

// Display returns the human-readable name for a recognized code or word,
// falling back to the input unchanged.
func Display(code string) string {
	e := lookup(code)
	if e == nil {
		return code
	}
	return e.display
}

// VITSSupported reports whether the VITS engine can synthesize the given
// language; unsupported languages fall back to the fairseq engine.
func VITSSupported(code string) bool {
	e := lookup(code)
	return e != nil && e.vits
}

// Known lists all recognized 3-letter codes with display names, sorted by
// table order.
func Known() [][2]string {
	out := make([][2]string, 0, len(languages))
	for i := range languages {
		out = append(out, [2]string{languages[i].code3, languages[i].display})
	}
	return out
}
