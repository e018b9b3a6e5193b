package gemini

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/leofalp/aibridge/providers/ai"
)

// buildContents converts conversation turns to the Gemini content slice.
// Role mapping: user -> user, assistant -> model, system -> user (system
// directives belong in SystemInstruction; a stray system turn degrades to a
// user message rather than being dropped).
func buildContents(turns []ai.Turn) []content {
	var contents []content
	for _, turn := range turns {
		role := "user"
		if turn.Role == ai.RoleAssistant {
			role = "model"
		}
		contents = append(contents, content{
			Role:  role,
			Parts: []part{{Text: turn.Content}},
		})
	}
	return contents
}

// geminiToGeneric converts a generateContentResponse to the canonical
// response shape, decoding inline media per the requested capability.
func geminiToGeneric(resp generateContentResponse, request ai.Request) (*ai.Response, error) {
	result := &ai.Response{}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			result.Error = "blocked: " + resp.PromptFeedback.BlockReason
			return result, nil
		}
		result.Error = "empty response from Gemini API"
		return result, nil
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		result.Error = "candidate carried no content"
		return result, nil
	}

	var textParts []string
	for _, p := range candidate.Content.Parts {
		if p.Text != "" {
			textParts = append(textParts, p.Text)
		}
		if p.InlineData == nil {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
		if err != nil {
			return nil, fmt.Errorf("decoding inline %s payload: %w", p.InlineData.MimeType, err)
		}
		if strings.HasPrefix(p.InlineData.MimeType, "audio/") {
			result.AudioData = data
			result.Format = audioFormat(request)
		} else {
			result.ImageData = data
			result.Format = imageFormat(p.InlineData.MimeType, request)
		}
	}

	result.Text = strings.Join(textParts, "\n")
	return result, nil
}

// audioFormat resolves the output container for synthesized audio. Gemini
// returns raw PCM; the requested format names what the caller stores it as.
func audioFormat(request ai.Request) string {
	if request.Audio != nil && request.Audio.Format != "" {
		return request.Audio.Format
	}
	return ai.AudioFormatWAV
}

// imageFormat resolves the output format for generated images from the wire
// MIME type, falling back to the requested format.
func imageFormat(mimeType string, request ai.Request) string {
	if ext, ok := strings.CutPrefix(mimeType, "image/"); ok && ext != "" {
		return ext
	}
	if request.Image != nil && request.Image.Format != "" {
		return request.Image.Format
	}
	return "png"
}
