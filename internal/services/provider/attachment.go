// File: internal/services/provider/attachment.go
package provider

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extension to media-type tables per provider. An extension missing from
// the table is a hard validation error, never a silent skip.
var anthropicMediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

var openaiImageMediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// loadAttachment reads the file at path and returns its media type and
// base64-encoded content. Both failure modes are detected before any
// upstream call is made.
func loadAttachment(providerKey, path string, mediaTypes map[string]string) (string, string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", "", NewValidationError(providerKey, "attachment",
			fmt.Sprintf("attachment file does not exist: %s", path))
	}

	ext := strings.ToLower(filepath.Ext(path))
	mediaType, ok := mediaTypes[ext]
	if !ok {
		return "", "", NewValidationError(providerKey, "attachment",
			fmt.Sprintf("file format %s is not supported", ext))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", NewValidationError(providerKey, "attachment",
			fmt.Sprintf("could not read attachment: %v", err))
	}

	return mediaType, base64.StdEncoding.EncodeToString(data), nil
}

// isUnsupportedParamError matches the upstream error messages that mean a
// request parameter (usually a file attachment shape) was rejected. These
// trigger the one-shot attachment-stripped retry.
func isUnsupportedParamError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "unrecognized request argument") ||
		strings.Contains(lower, "incompatible request argument") ||
		strings.Contains(lower, "unsupported parameter")
}
