// File: internal/services/provider/openai.go
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	openai "github.com/sashabaranov/go-openai"
)

// uploadPartSize is the chunk size of the fallback Uploads protocol.
const uploadPartSize = 10 * 1024 * 1024

// OpenAIClient combines the go-openai SDK (model catalog, file objects,
// direct uploads) with raw HTTP for the calls the SDK has no types for:
// chat completions carrying file-reference parts and the chunked Uploads
// protocol.
type OpenAIClient struct {
	config *Config
	api    *openai.Client
	http   *http.Client
	logger Logger
}

func NewOpenAIClient(config *Config, logger Logger) (*OpenAIClient, error) {
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(KeyOpenAI, err.Error())
	}

	apiConfig := openai.DefaultConfig(config.APIKey)
	apiConfig.BaseURL = config.BaseURL

	return &OpenAIClient{
		config: config,
		api:    openai.NewClientWithConfig(apiConfig),
		http:   &http.Client{Timeout: config.Timeout},
		logger: logger,
	}, nil
}

// ListModels fetches the raw catalog, filters it to chat models, collapses
// dated variants to the newest release per base name, and ranks the rest.
// Any failure degrades to the versioned static fallback.
func (c *OpenAIClient) ListModels(ctx context.Context) ([]ModelInfo, error) {
	list, err := c.api.ListModels(ctx)
	if err != nil {
		c.logger.Warn("openai model list failed, using fallback catalog", "error", err.Error())
		return OpenAIFallbackModels, nil
	}

	chatModels := make([]openai.Model, 0, len(list.Models))
	for _, m := range list.Models {
		if openaiIsChatModel(m.ID) {
			chatModels = append(chatModels, m)
		}
	}

	grouped := groupNewestModels(chatModels)
	models := make([]ModelInfo, 0, len(grouped))
	for _, m := range grouped {
		models = append(models, ModelInfo{
			ID:          m.ID,
			Name:        formatOpenAIModelName(m.ID),
			Description: openaiModelDescription(m.ID),
		})
	}

	if len(models) == 0 {
		c.logger.Warn("no chat models in openai catalog, using fallback catalog")
		return OpenAIFallbackModels, nil
	}

	c.logger.Debug("openai catalog normalized",
		"raw", len(list.Models), "chat", len(chatModels), "grouped", len(models))
	return sortModelsByPriority(models), nil
}

// GetModelLimits never fails: the output cap is a fixed provider ceiling
// and the context window comes from the hard-coded per-family table. The
// detail endpoint is still probed so unknown ids are logged.
func (c *OpenAIClient) GetModelLimits(ctx context.Context, modelID string) (ModelLimits, error) {
	if _, err := c.api.GetModel(ctx, modelID); err != nil {
		c.logger.Warn("openai model detail failed, using defaults", "model", modelID, "error", err.Error())
	}

	return ModelLimits{
		MaxTokens:     c.config.MaxOutputTokens,
		ContextWindow: openaiContextWindowFor(modelID),
		Name:          formatOpenAIModelName(modelID),
		Description:   openaiModelDescription(modelID),
	}, nil
}

// SendMessage posts a chat completion. The system message is the rolling
// summary when present, a generic helper prompt otherwise. Attachments are
// inlined as data URLs for vision-capable models and skipped with a warning
// for the rest; uploaded files ride along as file-reference parts.
func (c *OpenAIClient) SendMessage(ctx context.Context, req SendRequest) (SendResult, error) {
	system := req.ContextSummary
	if system == "" {
		system = "You are a helpful AI assistant."
	}

	messages := make([]oaChatMessage, 0, len(req.History)+2)
	messages = append(messages, oaChatMessage{Role: "system", Content: system})
	for _, turn := range req.History {
		messages = append(messages, oaChatMessage{Role: string(turn.Role), Content: turn.Content})
	}

	attachmentPath := req.AttachmentPath
	if attachmentPath != "" && !openaiSupportsVision(req.ModelID) {
		c.logger.Warn("model does not support image input, skipping attachment",
			"model", req.ModelID)
		attachmentPath = ""
	}

	parts, err := buildContentParts(KeyOpenAI, req.Prompt, attachmentPath, req.FileIDs, openaiImageMediaTypes)
	if err != nil {
		return SendResult{}, err
	}
	hadFiles := len(req.FileIDs) > 0

	userMsg := oaChatMessage{Role: "user", Content: req.Prompt}
	if len(parts) > 1 {
		wireParts := make([]oaContentPart, 0, len(parts))
		for _, p := range parts {
			switch p.Type {
			case PartText:
				wireParts = append(wireParts, oaContentPart{Type: "text", Text: p.Text})
			case PartImageBase64:
				wireParts = append(wireParts, oaContentPart{Type: "image_url", ImageURL: &oaImageURL{
					URL: fmt.Sprintf("data:%s;base64,%s", p.MediaType, p.Data),
				}})
			case PartFileReference:
				wireParts = append(wireParts, oaContentPart{Type: "file", FileID: p.FileID})
			}
		}
		userMsg.Content = wireParts
	}
	messages = append(messages, userMsg)

	wireReq := oaChatRequest{
		Model:     req.ModelID,
		Messages:  messages,
		MaxTokens: c.config.MaxOutputTokens,
	}
	if openaiSupportsTemperature(req.ModelID) {
		temp := c.config.Temperature
		wireReq.Temperature = &temp
	}

	c.logger.Debug("sending openai request",
		"model", req.ModelID, "messages", len(messages), "file_ids", len(req.FileIDs))

	result, upstreamMsg, err := c.doSend(ctx, wireReq)
	if err == nil {
		return result, nil
	}

	// One attachment-stripped retry when a request parameter was rejected,
	// sharing the caller's context deadline.
	if (hadFiles || req.AttachmentPath != "") && isUnsupportedParamError(upstreamMsg) {
		c.logger.Warn("openai rejected attachment payload, retrying without it", "model", req.ModelID)
		temp := c.config.Temperature
		retryReq := oaChatRequest{
			Model: req.ModelID,
			Messages: []oaChatMessage{
				{Role: "system", Content: "You are a helpful AI assistant. The user uploaded a file, " +
					"but you cannot access its contents directly. Let them know about this."},
				{Role: "user", Content: req.Prompt + " (I attached a file for you to read)"},
			},
			MaxTokens:   c.config.MaxOutputTokens,
			Temperature: &temp,
		}
		if result, _, retryErr := c.doSend(ctx, retryReq); retryErr == nil {
			return result, nil
		}
	}
	return SendResult{}, err
}

func (c *OpenAIClient) doSend(ctx context.Context, wireReq oaChatRequest) (SendResult, string, error) {
	payload, err := json.Marshal(wireReq)
	if err != nil {
		return SendResult{}, "", NewUpstreamError(KeyOpenAI, "send_message", "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return SendResult{}, "", NewUpstreamError(KeyOpenAI, "send_message", "failed to build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return SendResult{}, "", NewUpstreamError(KeyOpenAI, "send_message", "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return SendResult{}, "", NewUpstreamError(KeyOpenAI, "send_message", "failed to read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errBody oaErrorBody
		upstreamMsg := string(body)
		if json.Unmarshal(body, &errBody) == nil && errBody.Error.Message != "" {
			upstreamMsg = errBody.Error.Message
		}
		return SendResult{}, upstreamMsg, NewUpstreamError(KeyOpenAI, "send_message",
			fmt.Sprintf("API error: status %d: %s", resp.StatusCode, upstreamMsg), nil)
	}

	var wireResp oaChatResponse
	if err := json.Unmarshal(body, &wireResp); err != nil {
		return SendResult{}, "", NewUpstreamError(KeyOpenAI, "send_message", "failed to unmarshal response", err)
	}

	var content string
	if len(wireResp.Choices) > 0 {
		content = wireResp.Choices[0].Message.Content
	}

	return SendResult{Content: content, ModelID: wireReq.Model, ResponseID: wireResp.ID}, "", nil
}

// UploadFile tries the single-shot multipart upload first and falls back
// to the chunked Uploads protocol for payloads the direct endpoint
// rejects. Both paths return the same FileHandle shape.
func (c *OpenAIClient) UploadFile(ctx context.Context, path, purpose string) (FileHandle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileHandle{}, NewValidationError(KeyOpenAI, "upload_file",
			fmt.Sprintf("file does not exist: %s", path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return FileHandle{}, NewValidationError(KeyOpenAI, "upload_file",
			fmt.Sprintf("could not read file: %v", err))
	}
	fileName := filepath.Base(path)

	file, err := c.api.CreateFileBytes(ctx, openai.FileBytesRequest{
		Name:    fileName,
		Bytes:   data,
		Purpose: openai.PurposeType(purpose),
	})
	if err == nil {
		c.logger.Info("file uploaded", "file_id", file.ID, "bytes", info.Size())
		return FileHandle{
			ID:        file.ID,
			Filename:  file.FileName,
			Bytes:     int64(file.Bytes),
			Purpose:   string(file.Purpose),
			CreatedAt: file.CreatedAt,
		}, nil
	}

	c.logger.Warn("direct upload failed, falling back to chunked upload",
		"file", fileName, "error", err.Error())
	return c.chunkedUpload(ctx, purpose, fileName, data)
}

// chunkedUpload drives the create-upload / add-part / complete-upload
// protocol at a fixed part size. A failure mid-stream cancels the upload
// upstream so no half-finished resource is left behind.
func (c *OpenAIClient) chunkedUpload(ctx context.Context, purpose, fileName string, data []byte) (FileHandle, error) {
	upload, err := c.createUpload(ctx, purpose, fileName, int64(len(data)))
	if err != nil {
		return FileHandle{}, err
	}

	numParts := (len(data) + uploadPartSize - 1) / uploadPartSize
	c.logger.Info("starting chunked upload",
		"upload_id", upload.ID, "parts", numParts, "bytes", len(data))

	for i := 0; i < numParts; i++ {
		start := i * uploadPartSize
		end := start + uploadPartSize
		if end > len(data) {
			end = len(data)
		}
		if err := c.addUploadPart(ctx, upload.ID, data[start:end], i+1); err != nil {
			c.cancelUpload(upload.ID)
			return FileHandle{}, err
		}
	}

	completed, err := c.completeUpload(ctx, upload.ID)
	if err != nil {
		c.cancelUpload(upload.ID)
		return FileHandle{}, err
	}

	handle := FileHandle{ID: completed.ID, Filename: completed.Filename, Bytes: completed.Bytes, Purpose: completed.Purpose}
	if completed.File != nil {
		handle = FileHandle{
			ID:        completed.File.ID,
			Filename:  completed.File.Filename,
			Bytes:     completed.File.Bytes,
			Purpose:   completed.File.Purpose,
			CreatedAt: completed.File.CreatedAt,
		}
	}
	c.logger.Info("chunked upload complete", "file_id", handle.ID)
	return handle, nil
}

func (c *OpenAIClient) createUpload(ctx context.Context, purpose, fileName string, size int64) (*oaUpload, error) {
	payload, _ := json.Marshal(oaCreateUploadRequest{Purpose: purpose, FileSize: size, FileName: fileName})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/uploads", bytes.NewReader(payload))
	if err != nil {
		return nil, NewUpstreamError(KeyOpenAI, "create_upload", "failed to build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	var upload oaUpload
	if err := c.doJSON(req, "create_upload", &upload); err != nil {
		return nil, err
	}
	return &upload, nil
}

func (c *OpenAIClient) addUploadPart(ctx context.Context, uploadID string, part []byte, partNumber int) error {
	url := fmt.Sprintf("%s/uploads/%s/parts", c.config.BaseURL, uploadID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(part))
	if err != nil {
		return NewUpstreamError(KeyOpenAI, "add_upload_part", "failed to build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Part-Number", strconv.Itoa(partNumber))

	var out oaUploadPart
	if err := c.doJSON(req, "add_upload_part", &out); err != nil {
		return err
	}
	c.logger.Debug("uploaded part", "upload_id", uploadID, "part", partNumber)
	return nil
}

func (c *OpenAIClient) completeUpload(ctx context.Context, uploadID string) (*oaUpload, error) {
	url := fmt.Sprintf("%s/uploads/%s/complete", c.config.BaseURL, uploadID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, NewUpstreamError(KeyOpenAI, "complete_upload", "failed to build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	var upload oaUpload
	if err := c.doJSON(req, "complete_upload", &upload); err != nil {
		return nil, err
	}
	return &upload, nil
}

// cancelUpload is best effort cleanup; the orphan is logged when the
// upstream refuses the cancellation.
func (c *OpenAIClient) cancelUpload(uploadID string) {
	url := fmt.Sprintf("%s/uploads/%s/cancel", c.config.BaseURL, uploadID)
	req, err := http.NewRequest(http.MethodPost, url, nil)
	if err != nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("could not cancel orphaned upload", "upload_id", uploadID, "error", err.Error())
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("could not cancel orphaned upload", "upload_id", uploadID, "status", resp.StatusCode)
		return
	}
	c.logger.Info("cancelled orphaned upload", "upload_id", uploadID)
}

func (c *OpenAIClient) doJSON(req *http.Request, operation string, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return NewUpstreamError(KeyOpenAI, operation, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewUpstreamError(KeyOpenAI, operation, "failed to read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		var errBody oaErrorBody
		msg := string(body)
		if json.Unmarshal(body, &errBody) == nil && errBody.Error.Message != "" {
			msg = errBody.Error.Message
		}
		return NewUpstreamError(KeyOpenAI, operation,
			fmt.Sprintf("API error: status %d: %s", resp.StatusCode, msg), nil)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return NewUpstreamError(KeyOpenAI, operation, "failed to unmarshal response", err)
	}
	return nil
}

// GetFile returns one provider file record.
func (c *OpenAIClient) GetFile(ctx context.Context, fileID string) (FileHandle, error) {
	file, err := c.api.GetFile(ctx, fileID)
	if err != nil {
		return FileHandle{}, NewUpstreamError(KeyOpenAI, "get_file", "failed to fetch file", err)
	}
	return FileHandle{
		ID:        file.ID,
		Filename:  file.FileName,
		Bytes:     int64(file.Bytes),
		Purpose:   string(file.Purpose),
		CreatedAt: file.CreatedAt,
	}, nil
}

// ListFiles returns uploaded files, optionally filtered by purpose.
func (c *OpenAIClient) ListFiles(ctx context.Context, purpose string) ([]FileHandle, error) {
	list, err := c.api.ListFiles(ctx)
	if err != nil {
		return nil, NewUpstreamError(KeyOpenAI, "list_files", "failed to list files", err)
	}

	files := make([]FileHandle, 0, len(list.Files))
	for _, f := range list.Files {
		if purpose != "" && string(f.Purpose) != purpose {
			continue
		}
		files = append(files, FileHandle{
			ID:        f.ID,
			Filename:  f.FileName,
			Bytes:     int64(f.Bytes),
			Purpose:   string(f.Purpose),
			CreatedAt: f.CreatedAt,
		})
	}
	return files, nil
}

// DeleteFile removes an uploaded file.
func (c *OpenAIClient) DeleteFile(ctx context.Context, fileID string) error {
	if err := c.api.DeleteFile(ctx, fileID); err != nil {
		return NewUpstreamError(KeyOpenAI, "delete_file", "failed to delete file", err)
	}
	return nil
}
