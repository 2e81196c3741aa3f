// File: internal/services/provider/openai_models.go
package provider

import (
	"regexp"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Catalog normalization for OpenAI. The raw /models listing is full of
// dated near-duplicates (gpt-4-0613, gpt-4o-2024-05-13, ...); they are
// filtered down to chat models, collapsed to the newest release per base
// name, and ranked so flagship models surface first.

var (
	openaiNonChatPrefixes = []string{"text-", "whisper-", "tts-", "dall-e", "embedding"}
	openaiChatKeywords    = []string{"gpt", "chat", "completions", "turbo"}

	// Ordered: the first matching keyword decides a model's rank.
	openaiPriorityRanking = []string{
		"gpt-4o",
		"gpt-4-turbo",
		"gpt-4-vision",
		"gpt-4",
		"gpt-3.5-turbo",
	}

	dateSuffixRe    = regexp.MustCompile(`-\d{4}-\d{2}-\d{2}$`)
	shortDateRe     = regexp.MustCompile(`-\d{8}$`)
	numericSuffixRe = regexp.MustCompile(`-\d{4,}$`)
	previewSuffixRe = regexp.MustCompile(`-preview.*$`)
	embeddedStampRe = regexp.MustCompile(`(\d{8}|\d{4}-\d{2}-\d{2})`)
)

// baseModelPatterns maps normalized ids onto canonical base names, checked
// in priority order.
var baseModelPatterns = []struct {
	re   *regexp.Regexp
	base string
}{
	{regexp.MustCompile(`gpt-4o`), "gpt-4o"},
	{regexp.MustCompile(`gpt-4.*vision`), "gpt-4-vision"},
	{regexp.MustCompile(`gpt-4.*turbo`), "gpt-4-turbo"},
	{regexp.MustCompile(`gpt-4.*32k`), "gpt-4-32k"},
	{regexp.MustCompile(`gpt-4`), "gpt-4"},
	{regexp.MustCompile(`gpt-3\.5.*turbo.*16k`), "gpt-3.5-turbo-16k"},
	{regexp.MustCompile(`gpt-3\.5.*turbo`), "gpt-3.5-turbo"},
}

// openaiBaseModelName strips date and version suffixes from a model id and
// maps it onto a canonical base name.
func openaiBaseModelName(modelID string) string {
	base := strings.ToLower(modelID)
	base = dateSuffixRe.ReplaceAllString(base, "")
	base = shortDateRe.ReplaceAllString(base, "")
	base = numericSuffixRe.ReplaceAllString(base, "")
	base = previewSuffixRe.ReplaceAllString(base, "")

	if strings.HasPrefix(base, "chatgpt-") {
		base = "gpt-" + strings.TrimPrefix(base, "chatgpt-")
	}

	for _, p := range baseModelPatterns {
		if p.re.MatchString(base) {
			return p.base
		}
	}
	return base
}

// openaiIsChatModel rejects the known non-chat families and requires a
// chat keyword in the id.
func openaiIsChatModel(modelID string) bool {
	id := strings.ToLower(modelID)
	for _, prefix := range openaiNonChatPrefixes {
		if strings.HasPrefix(id, prefix) {
			return false
		}
	}
	for _, keyword := range openaiChatKeywords {
		if strings.Contains(id, keyword) {
			return true
		}
	}
	return false
}

// groupNewestModels collapses dated variants to one entry per base name,
// keeping the most recently created variant. Creation time comes from the
// API's created field, then from a timestamp embedded in the id, then the
// shorter id wins.
func groupNewestModels(models []openai.Model) []openai.Model {
	groups := make(map[string][]openai.Model)
	order := make([]string, 0)
	for _, m := range models {
		base := openaiBaseModelName(m.ID)
		if _, seen := groups[base]; !seen {
			order = append(order, base)
		}
		groups[base] = append(groups[base], m)
	}

	newest := make([]openai.Model, 0, len(order))
	for _, base := range order {
		group := groups[base]
		sort.SliceStable(group, func(i, j int) bool {
			a, b := group[i], group[j]
			if a.CreatedAt != 0 && b.CreatedAt != 0 && a.CreatedAt != b.CreatedAt {
				return a.CreatedAt > b.CreatedAt
			}
			stampA := embeddedStampRe.FindString(a.ID)
			stampB := embeddedStampRe.FindString(b.ID)
			if stampA != "" && stampB != "" && stampA != stampB {
				return stampA > stampB
			}
			return len(a.ID) < len(b.ID)
		})
		newest = append(newest, group[0])
	}
	return newest
}

// sortModelsByPriority orders entries by the fixed provider-preference
// ranking; ties break toward the shorter (usually undated) id.
func sortModelsByPriority(models []ModelInfo) []ModelInfo {
	rank := func(id string) int {
		for i, keyword := range openaiPriorityRanking {
			if strings.Contains(id, keyword) {
				return i
			}
		}
		return len(openaiPriorityRanking)
	}

	sort.SliceStable(models, func(i, j int) bool {
		ri, rj := rank(models[i].ID), rank(models[j].ID)
		if ri != rj {
			return ri < rj
		}
		nameI := numericSuffixRe.ReplaceAllString(models[i].ID, "")
		nameJ := numericSuffixRe.ReplaceAllString(models[j].ID, "")
		return len(nameI) < len(nameJ)
	})
	return models
}

var openaiDisplayNames = map[string]string{
	"gpt-4o":            "GPT-4o",
	"gpt-4-vision":      "GPT-4 Vision",
	"gpt-4-turbo":       "GPT-4 Turbo",
	"gpt-4-32k":         "GPT-4 32K",
	"gpt-4":             "GPT-4",
	"gpt-3.5-turbo-16k": "GPT-3.5 Turbo 16K",
	"gpt-3.5-turbo":     "GPT-3.5 Turbo",
}

// formatOpenAIModelName produces a display name from a model id.
func formatOpenAIModelName(modelID string) string {
	base := openaiBaseModelName(modelID)
	if name, ok := openaiDisplayNames[base]; ok {
		return name
	}

	words := strings.Split(strings.ReplaceAll(base, "-", " "), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	name := strings.Join(words, " ")
	name = strings.ReplaceAll(name, "Gpt", "GPT")
	name = strings.ReplaceAll(name, "Chatgpt", "ChatGPT")
	return name
}

var openaiDescriptions = []struct {
	substr      string
	description string
}{
	{"gpt-4o", "Flagship multimodal model"},
	{"gpt-4-vision", "GPT-4 with image understanding"},
	{"gpt-4-turbo", "Improved GPT-4 with higher throughput"},
	{"gpt-4-32k", "GPT-4 with an extended 32K context"},
	{"gpt-4", "Powerful model for complex reasoning"},
	{"gpt-3.5-turbo-16k", "GPT-3.5 with an extended 16K context"},
	{"gpt-3.5-turbo", "Balanced performance and cost"},
}

// openaiModelDescription produces a short description from a model id.
func openaiModelDescription(modelID string) string {
	base := openaiBaseModelName(modelID)
	for _, entry := range openaiDescriptions {
		if strings.Contains(base, entry.substr) {
			return entry.description
		}
	}
	if strings.Contains(base, "gpt") {
		return "OpenAI GPT model"
	}
	return "OpenAI model " + modelID
}

// openaiContextWindowFor resolves the default context window for a model
// id from the hard-coded table.
func openaiContextWindowFor(modelID string) int {
	base := openaiBaseModelName(modelID)
	for _, entry := range openaiDefaultContextWindows {
		if strings.Contains(base, entry.substr) {
			return entry.contextWindow
		}
	}
	return openaiDefaultContextWindow
}

// openaiSupportsVision reports whether the model accepts image content.
func openaiSupportsVision(modelID string) bool {
	id := strings.ToLower(modelID)
	return strings.Contains(id, "gpt-4o") || strings.Contains(id, "gpt-4-vision")
}

// openaiSupportsTemperature filters out model releases known to reject the
// temperature parameter.
func openaiSupportsTemperature(modelID string) bool {
	id := strings.ToLower(modelID)
	return !strings.Contains(id, "gpt-4o-2024") && !strings.Contains(id, "gpt-4o-mini")
}
