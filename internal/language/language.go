package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Transcribable lists the languages offered to WhisperX alignment models.
var Transcribable = []string{
	"en", "es", "fr", "de", "it", "pt", "nl", "pl", "sv", "da",
	"no", "fi", "ru", "uk", "tr", "ar", "hi", "ja", "ko", "zh",
}

// bibliographic ISO 639-2/B codes that x/text does not map.
var bibliographic = map[string]string{
	"fre": "fr",
	"ger": "de",
	"dut": "nl",
	"chi": "zh",
}

var byName map[string]string

func init() {
	namer := display.English.Languages()
	byName = make(map[string]string, len(Transcribable))
	for _, code := range Transcribable {
		if name := namer.Name(language.Make(code)); name != "" {
			byName[strings.ToLower(name)] = code
		}
	}
}

// ToISO2 returns the ISO 639-1 code for code, or "" when it is not a
// recognizable language.
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if mapped, ok := byName[code]; ok {
		return mapped
	}
	if mapped, ok := bibliographic[code]; ok {
		return mapped
	}
	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return ""
	}
	return base.String()
}

// Transcribes reports whether code normalizes to a language WhisperX can
// align.
func Transcribes(code string) bool {
	iso := ToISO2(code)
	for _, c := range Transcribable {
		if c == iso {
			return true
		}
	}
	return false
}

// DisplayName returns the English name for code, or the upper-cased input
// when it is not recognized.
func DisplayName(code string) string {
	iso := ToISO2(code)
	if iso == "" {
		if strings.TrimSpace(code) == "" {
			return "Unknown"
		}
		return strings.ToUpper(strings.TrimSpace(code))
	}
	return display.English.Languages().Name(language.Make(iso))
}
