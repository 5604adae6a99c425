package metadata

import (
	"encoding/json"
	"fmt"
	"strings"

	"stockstudio/internal/domain"
)

type metadataPayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

func buildInstruction(req Request) string {
	cfg := req.Config
	var sb strings.Builder
	if len(req.Data) > 0 {
		sb.WriteString("Analyze this image and generate commercial microstock metadata for it.\n")
	} else {
		fmt.Fprintf(&sb, "Generate commercial microstock metadata for an asset file named %q.\n", req.Filename)
	}
	sb.WriteString("Return a single JSON object with the keys title, description and keywords.\n")
	fmt.Fprintf(&sb, "The title must be at most %d characters.\n", cfg.TitleMaxChars)
	fmt.Fprintf(&sb, "The description must be at most %d characters.\n", cfg.DescriptionMaxChars)
	fmt.Fprintf(&sb, "Provide exactly %d keywords ordered from most to least relevant.\n", cfg.KeywordCount)
	switch cfg.Platform {
	case domain.PlatformAdobeStock:
		sb.WriteString("Target Adobe Stock: the title and keywords matter most, keep the description short.\n")
	case domain.PlatformShutterstock:
		sb.WriteString("Target Shutterstock: the description and keywords matter most.\n")
	case domain.PlatformFreepik:
		sb.WriteString("Target Freepik: the title and keywords matter most, keep the description short.\n")
	}
	if words := cfg.Exclusions.TitleList(); len(words) > 0 {
		fmt.Fprintf(&sb, "Never use these words in the title: %s.\n", strings.Join(words, ", "))
	}
	if words := cfg.Exclusions.KeywordList(); len(words) > 0 {
		fmt.Fprintf(&sb, "Never use these keywords: %s.\n", strings.Join(words, ", "))
	}
	sb.WriteString("Use plain language a stock-photo buyer would search for. No markdown, JSON only.")
	return sb.String()
}

func parsePayload(raw string) (*domain.Metadata, error) {
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return nil, emptyResponseError("model returned no usable payload")
	}
	var decoded metadataPayload
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return nil, emptyResponseError("model payload is not valid JSON: " + err.Error())
	}
	keywords := make([]string, 0, len(decoded.Keywords))
	for _, kw := range decoded.Keywords {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return &domain.Metadata{
		Title:       strings.TrimSpace(decoded.Title),
		Description: strings.TrimSpace(decoded.Description),
		Keywords:    keywords,
	}, nil
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
