package anthropic

/*
	ANTHROPIC API - REQUEST TYPES
*/

// messagesRequest represents the request to Anthropic's /messages endpoint.
type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

// message is one conversation message.
type message struct {
	Role    string         `json:"role"` // "user" or "assistant"
	Content []contentBlock `json:"content"`
}

// contentBlock is one typed block inside a message.
type contentBlock struct {
	Type   string       `json:"type"` // "text" or "image"
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

// imageSource carries an inline base64 image.
type imageSource struct {
	Type      string `json:"type"` // "base64"
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

/*
	ANTHROPIC API - RESPONSE TYPES
*/

// messagesResponse represents the reply from the /messages endpoint.
type messagesResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content,omitempty"`
	StopReason string         `json:"stop_reason,omitempty"`
	Error      *apiError      `json:"error,omitempty"`
}

// apiError carries a structured error from Anthropic.
type apiError struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
}

/*
	ANTHROPIC API - MODEL LIST
*/

// listModelsResponse represents the reply from /models.
type listModelsResponse struct {
	Data []modelInfo `json:"data"`
}

// modelInfo describes one remotely listed model.
type modelInfo struct {
	ID string `json:"id"`
}
