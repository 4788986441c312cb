package voice

import "strings"

// ToSpeech rewrites assistant text for speech synthesis. Sentence endings
// get SSML break tags so the voice pauses naturally, and unit abbreviations
// are spelled out because synthesizers read "km" literally.
func ToSpeech(text string) string {
	formatted := strings.ReplaceAll(text, ". ", ". <break time='500ms'/>")
	formatted = strings.ReplaceAll(formatted, "!", "! <break time='700ms'/>")
	formatted = strings.ReplaceAll(formatted, "?", "? <break time='700ms'/>")

	formatted = strings.ReplaceAll(formatted, " km", " kilometers")
	formatted = strings.ReplaceAll(formatted, " kg", " kilograms")

	return formatted
}
