// File: internal/services/provider/content.go
package provider

// buildContentParts assembles the provider-neutral parts of one user turn:
// the prompt text, an optional base64 attachment, and any file references.
// Attachment problems surface here, before any upstream call.
func buildContentParts(providerKey, prompt, attachmentPath string, fileIDs []string, mediaTypes map[string]string) ([]ContentPart, error) {
	parts := []ContentPart{TextPart(prompt)}

	if attachmentPath != "" {
		mediaType, data, err := loadAttachment(providerKey, attachmentPath, mediaTypes)
		if err != nil {
			return nil, err
		}
		partType := PartImageBase64
		if mediaType == "application/pdf" {
			partType = PartDocumentBase64
		}
		parts = append(parts, ContentPart{Type: partType, MediaType: mediaType, Data: data})
	}

	for _, id := range fileIDs {
		parts = append(parts, ContentPart{Type: PartFileReference, FileID: id})
	}
	return parts, nil
}
