package backend

import "errors"

// Endpoint paths of the chat backend.
const (
	chatEndpoint    = "/api/chat"
	pdfChatEndpoint = "/api/chat-pdf"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// DefaultSystemMessage matches the backend's default prompt for document chat.
const DefaultSystemMessage = "You are a helpful assistant that can answer questions about uploaded PDF documents " +
	"and search the web for additional information when needed. Format your responses using markdown for better " +
	"readability - use headers, bullet points, code blocks, and emphasis where appropriate."

var (
	// ErrMissingAPIKey reports that no primary API key is configured.
	ErrMissingAPIKey = errors.New("no API key configured")

	// ErrMissingSearchKey reports document chat without a web search key.
	// Document-grounded chat always carries web-search augmentation, so the
	// secondary key is required whenever a document is selected.
	ErrMissingSearchKey = errors.New("document chat requires a web search API key")
)

// Credentials carries the API keys forwarded to the backend with each turn.
type Credentials struct {
	APIKey       string // primary (OpenAI) key, always required
	TavilyAPIKey string // secondary (web search) key, required for document chat
}

// ChatPayload is the request body for the plain-chat endpoint.
type ChatPayload struct {
	DeveloperMessage string `json:"developer_message"`
	UserMessage      string `json:"user_message"`
	Model            string `json:"model"`
	APIKey           string `json:"api_key"`
}

// PDFChatPayload is the request body for the document-grounded endpoint.
type PDFChatPayload struct {
	Message       string `json:"message"`
	Model         string `json:"model"`
	APIKey        string `json:"api_key"`
	TavilyAPIKey  string `json:"tavily_api_key"`
	PDFID         string `json:"pdf_id"`
	SystemMessage string `json:"system_message"`
}

// Request pairs an endpoint with its JSON payload. Payload is either a
// ChatPayload or a PDFChatPayload, decided by whether a document is selected.
type Request struct {
	Endpoint string
	Payload  any
}

// Build shapes the outgoing request for one turn. It is a pure function of
// its inputs and performs no I/O; validation failures surface here, before
// any network interaction is attempted.
//
// A non-empty pdfID routes to the document-grounded endpoint, an empty one to
// plain chat. Model and system message fall back to the defaults above.
func Build(userText, pdfID, model, systemMessage string, creds Credentials) (Request, error) {
	if creds.APIKey == "" {
		return Request{}, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultModel
	}
	if systemMessage == "" {
		systemMessage = DefaultSystemMessage
	}

	if pdfID != "" {
		if creds.TavilyAPIKey == "" {
			return Request{}, ErrMissingSearchKey
		}
		return Request{
			Endpoint: pdfChatEndpoint,
			Payload: PDFChatPayload{
				Message:       userText,
				Model:         model,
				APIKey:        creds.APIKey,
				TavilyAPIKey:  creds.TavilyAPIKey,
				PDFID:         pdfID,
				SystemMessage: systemMessage,
			},
		}, nil
	}

	return Request{
		Endpoint: chatEndpoint,
		Payload: ChatPayload{
			DeveloperMessage: systemMessage,
			UserMessage:      userText,
			Model:            model,
			APIKey:           creds.APIKey,
		},
	}, nil
}
