package metadata

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"stockstudio/internal/domain"
)

// StaticGenerator derives metadata from the filename alone. It keeps the
// pipeline usable without credentials and gives tests a deterministic
// provider: the same filename and config always yield the same metadata.
type StaticGenerator struct{}

func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{}
}

var staticFillKeywords = []string{
	"stock photo", "background", "design", "concept", "closeup",
	"nobody", "creative", "modern", "natural", "professional",
	"colorful", "detail", "texture", "lifestyle", "abstract",
}

func (s *StaticGenerator) Name() string { return staticProviderName }

func (s *StaticGenerator) Generate(ctx context.Context, req Request) (*domain.Metadata, error) {
	cfg := req.Config
	tokens := filenameTokens(req.Filename)
	if len(tokens) == 0 {
		tokens = []string{"stock", "asset"}
	}
	c := cases.Title(language.English)
	title := c.String(strings.Join(tokens, " "))
	if len(title) > cfg.TitleMaxChars {
		title = strings.TrimSpace(title[:cfg.TitleMaxChars])
	}
	description := fmt.Sprintf("High quality stock image of %s, suitable for commercial use.", strings.Join(tokens, " "))
	if len(description) > cfg.DescriptionMaxChars {
		description = strings.TrimSpace(description[:cfg.DescriptionMaxChars])
	}
	keywords := make([]string, 0, cfg.KeywordCount)
	seen := map[string]bool{}
	for _, tok := range tokens {
		kw := strings.ToLower(tok)
		if !seen[kw] {
			seen[kw] = true
			keywords = append(keywords, kw)
		}
	}
	for _, kw := range staticFillKeywords {
		if len(keywords) >= cfg.KeywordCount {
			break
		}
		if !seen[kw] {
			seen[kw] = true
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) > cfg.KeywordCount {
		keywords = keywords[:cfg.KeywordCount]
	}
	return &domain.Metadata{
		Title:       title,
		Description: description,
		Keywords:    keywords,
	}, nil
}

func filenameTokens(name string) []string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	fields := strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == ' '
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" || isDigits(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

var _ Generator = (*StaticGenerator)(nil)
