package transcriber

import "github.com/abadojack/whatlanggo"

const (
	// minDetectRunes keeps detection away from one-word transcripts where it is noise.
	minDetectRunes = 20
	minConfidence  = 0.5
)

// DetectLanguage guesses the ISO 639-1 code of a transcript. It returns ""
// when the text is too short or detection is not reliable.
func DetectLanguage(text string) string {
	if len([]rune(text)) < minDetectRunes {
		return ""
	}
	info := whatlanggo.Detect(text)
	if info.Confidence < minConfidence {
		return ""
	}
	return info.Lang.Iso6391()
}
