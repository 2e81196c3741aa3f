// File: internal/services/provider/openai_defs.go
package provider

// Wire types for the OpenAI calls that go-openai cannot express: chat
// completions with file-reference content parts, and the chunked Uploads
// protocol.

type oaContentPart struct {
	Type     string      `json:"type"`
	Text     string      `json:"text,omitempty"`
	ImageURL *oaImageURL `json:"image_url,omitempty"`
	FileID   string      `json:"file_id,omitempty"`
}

type oaImageURL struct {
	URL string `json:"url"`
}

// oaChatMessage content is either a plain string or []oaContentPart.
type oaChatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type oaChatRequest struct {
	Model       string          `json:"model"`
	Messages    []oaChatMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature *float32        `json:"temperature,omitempty"`
}

type oaChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type oaErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Chunked upload protocol: create-upload, add-part xN, complete-upload.

type oaCreateUploadRequest struct {
	Purpose  string `json:"purpose"`
	FileSize int64  `json:"file_size"`
	FileName string `json:"file_name"`
}

type oaUpload struct {
	ID       string  `json:"id"`
	Status   string  `json:"status"`
	Filename string  `json:"filename"`
	Bytes    int64   `json:"bytes"`
	Purpose  string  `json:"purpose"`
	File     *oaFile `json:"file"`
}

type oaUploadPart struct {
	ID string `json:"id"`
}

type oaFile struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	Bytes     int64  `json:"bytes"`
	Purpose   string `json:"purpose"`
	CreatedAt int64  `json:"created_at"`
}
