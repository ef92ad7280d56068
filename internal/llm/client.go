package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Attachment is optional binary input sent along with a message, e.g. a photo
// of a vehicle. Providers that cannot handle it ignore it.
type Attachment struct {
	MIMEType string
	Data     []byte
}

type Message struct {
	Role       string
	Content    string
	Attachment *Attachment
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
}
