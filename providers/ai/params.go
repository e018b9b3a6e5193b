package ai

import "fmt"

// Audio output formats accepted by AudioParams.
const (
	AudioFormatMP3  = "mp3"
	AudioFormatWAV  = "wav"
	AudioFormatOGG  = "ogg"
	AudioFormatFLAC = "flac"
	AudioFormatM4A  = "m4a"
)

// AudioParams carries the parameters specific to audio capabilities
// (generation and transcription). Construct with NewAudioParams so the
// values are validated up front instead of at point-of-use.
type AudioParams struct {
	Voice    string // Voice name; empty selects the provider default
	Language string // BCP-47 language/locale tag, e.g. "en-US"
	Format   string // Output container format, e.g. "mp3"
}

// NewAudioParams validates and returns audio parameters. An empty format
// defaults to mp3; an unknown format is rejected.
func NewAudioParams(voice, language, format string) (AudioParams, error) {
	if format == "" {
		format = AudioFormatMP3
	}
	switch format {
	case AudioFormatMP3, AudioFormatWAV, AudioFormatOGG, AudioFormatFLAC, AudioFormatM4A:
	default:
		return AudioParams{}, fmt.Errorf("unsupported audio format %q", format)
	}
	return AudioParams{Voice: voice, Language: language, Format: format}, nil
}

// ImageParams carries the parameters specific to image generation.
type ImageParams struct {
	Size    string // e.g. "1024x1024"; empty selects the provider default
	Quality string // "standard" or "hd"; empty selects the provider default
	Format  string // Output format, e.g. "png"
}

// NewImageParams validates and returns image parameters.
func NewImageParams(size, quality, format string) (ImageParams, error) {
	switch quality {
	case "", "standard", "hd":
	default:
		return ImageParams{}, fmt.Errorf("unsupported image quality %q", quality)
	}
	if format == "" {
		format = "png"
	}
	return ImageParams{Size: size, Quality: quality, Format: format}, nil
}
