package ai

// Role identifies the author of a conversation turn; compatible with string.
type Role string

const (
	RoleSystem    Role = "system"    // Behavioral directives / configuration
	RoleUser      Role = "user"      // End-user message
	RoleAssistant Role = "assistant" // Model response
)

// Turn is a single conversation turn carried inside an Envelope's history.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Instruction is one behavioral directive. Instructions are an ordered
// key→value mapping: serialization order is the slice order, so identical
// logical requests always flatten to identical text.
type Instruction struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Attachment is a binary payload (image or audio) attached to a request.
// Data is base64-encoded; MimeType declares the content type on the wire.
type Attachment struct {
	Data     string `json:"data"`
	MimeType string `json:"mime_type"`

	// FileName is set when the payload originates from a stored file, e.g.
	// a pre-recorded audio clip handed to transcription. Providers that only
	// accept live input use this to distinguish the input shape.
	FileName string `json:"file_name,omitempty"`
}

// Envelope is the structured request passed to a provider: free-form context
// (task metadata), ordered instructions, an optional conversation history,
// and an optional attached binary payload.
//
// History is mutually exclusive with a pre-flattened copy of itself inside
// Context or Instructions. Providers must call [Provider.ProcessHistory]
// exactly once and serialize only the extracted turns into their wire format.
type Envelope struct {
	Context      string        `json:"context,omitempty"`
	Instructions []Instruction `json:"instructions,omitempty"`
	History      []Turn        `json:"history,omitempty"`
	Attachment   *Attachment   `json:"attachment,omitempty"`
}

// Clone returns a deep copy of the envelope. Mutating the copy never affects
// the original, so providers can strip or rewrite fields safely.
func (e Envelope) Clone() Envelope {
	out := Envelope{Context: e.Context}
	if len(e.Instructions) > 0 {
		out.Instructions = make([]Instruction, len(e.Instructions))
		copy(out.Instructions, e.Instructions)
	}
	if len(e.History) > 0 {
		out.History = make([]Turn, len(e.History))
		copy(out.History, e.History)
	}
	if e.Attachment != nil {
		att := *e.Attachment
		out.Attachment = &att
	}
	return out
}

// WithoutHistory returns a copy of the envelope with the history removed.
// Providers use this after extracting the turns so the history cannot be
// serialized twice.
func (e Envelope) WithoutHistory() Envelope {
	out := e.Clone()
	out.History = nil
	return out
}

// ExtractHistory implements the shared history-extraction contract: it
// returns the conversation turns and a copy of the envelope guaranteed not
// to contain them. Providers embed this as their ProcessHistory.
func (e Envelope) ExtractHistory() ([]Turn, Envelope) {
	if len(e.History) == 0 {
		return nil, e.Clone()
	}
	turns := make([]Turn, len(e.History))
	copy(turns, e.History)
	return turns, e.WithoutHistory()
}

// FlattenInstructions serializes the ordered instruction mapping into a
// deterministic "key: value" block, one directive per line. Slice order is
// preserved; no sorting is applied.
func (e Envelope) FlattenInstructions() string {
	if len(e.Instructions) == 0 {
		return ""
	}
	var b []byte
	for i, ins := range e.Instructions {
		if i > 0 {
			b = append(b, '\n')
		}
		b = append(b, ins.Key...)
		b = append(b, ':', ' ')
		b = append(b, ins.Value...)
	}
	return string(b)
}

// SystemText combines context and flattened instructions into the single
// system-level string most chat-style backends expect.
func (e Envelope) SystemText() string {
	instructions := e.FlattenInstructions()
	switch {
	case e.Context == "":
		return instructions
	case instructions == "":
		return e.Context
	default:
		return e.Context + "\n\n" + instructions
	}
}
