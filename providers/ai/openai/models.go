package openai

/*
	OPENAI API - RESPONSES ENDPOINT
*/

// responsesRequest represents the request to OpenAI's /responses endpoint.
type responsesRequest struct {
	Model        string         `json:"model"`
	Instructions string         `json:"instructions,omitempty"`
	Input        []inputItem    `json:"input"`
	Tools        []responseTool `json:"tools,omitempty"`
}

// inputItem is one element of the flat input array.
type inputItem struct {
	Role    string         `json:"role"` // "user", "assistant", "system"
	Content []inputContent `json:"content"`
}

// inputContent is one typed content block inside an input item.
type inputContent struct {
	Type     string `json:"type"` // "input_text" or "input_image"
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"` // data: URL for inline images
}

// responseTool declares a built-in tool; image generation is requested this
// way rather than through a separate endpoint.
type responseTool struct {
	Type         string `json:"type"` // "image_generation"
	Size         string `json:"size,omitempty"`
	Quality      string `json:"quality,omitempty"`
	OutputFormat string `json:"output_format,omitempty"`
}

// responsesResponse represents the reply from the /responses endpoint.
type responsesResponse struct {
	ID     string       `json:"id"`
	Model  string       `json:"model"`
	Output []outputItem `json:"output,omitempty"`
	Error  *apiError    `json:"error,omitempty"`
}

// outputItem is one element of the output array: a message or a tool call
// result such as a generated image.
type outputItem struct {
	Type    string          `json:"type"` // "message" or "image_generation_call"
	Content []outputContent `json:"content,omitempty"`
	Result  string          `json:"result,omitempty"` // base64 payload for image_generation_call
}

// outputContent is one typed content block inside an output message.
type outputContent struct {
	Type string `json:"type"` // "output_text"
	Text string `json:"text,omitempty"`
}

// apiError carries a structured error from OpenAI.
type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

/*
	OPENAI API - AUDIO ENDPOINTS
*/

// speechRequest represents the request to /audio/speech; the response body is
// the raw audio payload.
type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format,omitempty"`
}

// transcriptionResponse represents the JSON reply from /audio/transcriptions.
type transcriptionResponse struct {
	Text string `json:"text"`
}

/*
	OPENAI API - MODEL LIST
*/

// listModelsResponse represents the reply from /models.
type listModelsResponse struct {
	Data []modelInfo `json:"data"`
}

// modelInfo describes one remotely listed model.
type modelInfo struct {
	ID string `json:"id"`
}
