package ai

// Gender classifies a synthesized voice. Providers without audio support
// report GenderNeutral for every name rather than erroring.
type Gender string

const (
	GenderFemale  Gender = "female"
	GenderMale    Gender = "male"
	GenderNeutral Gender = "neutral"
)

// Voice describes one synthesized voice offered by an audio-capable provider.
type Voice struct {
	Name     string `json:"name"`
	Gender   Gender `json:"gender"`
	Language string `json:"language,omitempty"`
}

// VoiceCatalog is the embeddable default implementation of the voice
// introspection contract. Audio-capable providers populate Voices from their
// static configuration; providers without audio embed the zero value and get
// empty/neutral answers for free.
type VoiceCatalog struct {
	Voices []Voice
}

// AvailableVoices returns the declared voices. The slice must not be mutated.
func (v VoiceCatalog) AvailableVoices() []Voice {
	return v.Voices
}

// IsValidVoice reports whether name is one of the declared voices.
func (v VoiceCatalog) IsValidVoice(name string) bool {
	for _, voice := range v.Voices {
		if voice.Name == name {
			return true
		}
	}
	return false
}

// VoiceGender returns the gender of the named voice, or GenderNeutral when
// the name is unknown.
func (v VoiceCatalog) VoiceGender(name string) Gender {
	for _, voice := range v.Voices {
		if voice.Name == name {
			return voice.Gender
		}
	}
	return GenderNeutral
}
