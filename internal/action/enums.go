package action

// The single canonical vocabulary for every enumerated field. Validators
// and executors all consult these sets; no layer carries a parallel copy.

// ImageSizes lists the accepted asset_image sizes, as "WIDTHxHEIGHT".
var ImageSizes = []string{"512x512", "768x768", "1024x768", "1024x1024", "1792x1024"}

// ImageModels lists the accepted asset_image models.
var ImageModels = []string{"flux-schnell", "flux-pro"}

// SpeechModels lists the accepted asset_subtitle models.
var SpeechModels = []string{"openai-tts", "eleven-turbo"}

// VoiceGenders lists the accepted asset_subtitle voice genders.
var VoiceGenders = []string{"male", "female", "neutral"}

// VoiceTones lists the accepted asset_subtitle voice tones.
var VoiceTones = []string{"epic", "warm", "ominous", "playful", "solemn"}

// VoicePaces lists the accepted asset_subtitle voice paces.
var VoicePaces = []string{"slow", "normal", "fast"}

// Animations lists the accepted cutscene shot animations.
var Animations = []string{"none", "pan_left", "pan_right", "zoom_in", "zoom_out", "fade"}

// OneOf reports whether v is a member of the given enumeration.
func OneOf(v string, enum []string) bool {
	for _, e := range enum {
		if v == e {
			return true
		}
	}
	return false
}
