// File: internal/storage/mime.go
package storage

// Per-provider media type tables. The store accepts the union; each
// provider client narrows again before building its payload.

// AnthropicMIMETypes lists what Anthropic message blocks can carry.
var AnthropicMIMETypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

// OpenAIMIMETypes is the broader set the file upload endpoints take.
var OpenAIMIMETypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".json": "application/json",
}

// MediaTypeFor resolves an extension against a provider table.
func MediaTypeFor(ext string, table map[string]string) (string, bool) {
	mediaType, ok := table[ext]
	return mediaType, ok
}
