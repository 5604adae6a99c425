package domain

import (
	"fmt"
	"strings"
	"time"
)

// Platform identifies the target marketplace profile for a batch run. The
// profile decides which metadata fields the provider is required to return.
type Platform string

const (
	PlatformAll          Platform = "all"
	PlatformAdobeStock   Platform = "adobe_stock"
	PlatformShutterstock Platform = "shutterstock"
	PlatformFreepik      Platform = "freepik"
)

// RequiredFields describes which metadata fields a platform profile demands.
type RequiredFields struct {
	Title       bool
	Description bool
	Keywords    bool
}

// Requires returns the field requirements for the platform. Unknown platforms
// fall back to requiring everything.
func (p Platform) Requires() RequiredFields {
	switch p {
	case PlatformAdobeStock, PlatformFreepik:
		return RequiredFields{Title: true, Keywords: true}
	case PlatformShutterstock:
		return RequiredFields{Description: true, Keywords: true}
	default:
		return RequiredFields{Title: true, Description: true, Keywords: true}
	}
}

func knownPlatform(p Platform) bool {
	switch p {
	case PlatformAll, PlatformAdobeStock, PlatformShutterstock, PlatformFreepik:
		return true
	}
	return false
}

// Affix is an optional text fragment applied around a generated field.
type Affix struct {
	Enabled bool   `json:"enabled"`
	Text    string `json:"text"`
}

// Apply wraps value with the affix when enabled.
func (a Affix) apply(value, side string) string {
	if !a.Enabled || strings.TrimSpace(a.Text) == "" {
		return value
	}
	if side == "prefix" {
		return strings.TrimSpace(a.Text + " " + value)
	}
	return strings.TrimSpace(value + " " + a.Text)
}

// Affixes groups the independently toggleable prefix/suffix fragments.
type Affixes struct {
	TitlePrefix       Affix `json:"title_prefix"`
	TitleSuffix       Affix `json:"title_suffix"`
	DescriptionPrefix Affix `json:"description_prefix"`
	DescriptionSuffix Affix `json:"description_suffix"`
}

// Exclusions carries comma-separated denylists forwarded to the provider as
// advisory negative constraints. The pipeline does not post-filter.
type Exclusions struct {
	TitleWords   string `json:"title_words"`
	KeywordWords string `json:"keyword_words"`
}

// Words splits a comma-separated denylist into trimmed, non-empty entries.
func splitWords(blob string) []string {
	var out []string
	for _, part := range strings.Split(blob, ",") {
		if w := strings.TrimSpace(part); w != "" {
			out = append(out, w)
		}
	}
	return out
}

// TitleList returns the title denylist entries.
func (e Exclusions) TitleList() []string { return splitWords(e.TitleWords) }

// KeywordList returns the keyword denylist entries.
func (e Exclusions) KeywordList() []string { return splitWords(e.KeywordWords) }

// Batch configuration defaults and bounds, matching the tuning range the
// product exposes.
const (
	DefaultTitleMaxChars       = 100
	DefaultDescriptionMaxChars = 200
	DefaultKeywordCount        = 40
	MinKeywordCount            = 5
	MaxKeywordCount            = 50
	DefaultItemDelay           = 300 * time.Millisecond
)

// BatchConfig is the immutable per-run tuning snapshot. It is validated once
// when a run starts and applied uniformly to every item in that run.
type BatchConfig struct {
	TitleMaxChars       int        `json:"title_max_chars"`
	DescriptionMaxChars int        `json:"description_max_chars"`
	KeywordCount        int        `json:"keyword_count"`
	Platform            Platform   `json:"platform"`
	Affixes             Affixes    `json:"affixes"`
	Exclusions          Exclusions `json:"exclusions"`
	ItemDelayMS         int        `json:"item_delay_ms"`
}

// Normalize applies defaults and clamps tunables, then validates the result.
func (c *BatchConfig) Normalize() error {
	if c.TitleMaxChars <= 0 {
		c.TitleMaxChars = DefaultTitleMaxChars
	}
	if c.DescriptionMaxChars <= 0 {
		c.DescriptionMaxChars = DefaultDescriptionMaxChars
	}
	if c.KeywordCount == 0 {
		c.KeywordCount = DefaultKeywordCount
	}
	if c.KeywordCount < MinKeywordCount {
		c.KeywordCount = MinKeywordCount
	}
	if c.KeywordCount > MaxKeywordCount {
		c.KeywordCount = MaxKeywordCount
	}
	if c.Platform == "" {
		c.Platform = PlatformAll
	}
	if !knownPlatform(c.Platform) {
		return fmt.Errorf("%w: unknown platform %q", ErrInvalidConfig, c.Platform)
	}
	if c.ItemDelayMS < 0 {
		return fmt.Errorf("%w: negative item delay", ErrInvalidConfig)
	}
	if c.ItemDelayMS == 0 {
		c.ItemDelayMS = int(DefaultItemDelay / time.Millisecond)
	}
	return nil
}

// ItemDelay returns the inter-item throttle as a duration.
func (c BatchConfig) ItemDelay() time.Duration {
	return time.Duration(c.ItemDelayMS) * time.Millisecond
}

// ApplyAffixes decorates generated metadata with the configured prefixes and
// suffixes. Runs after generation, never before.
func (c BatchConfig) ApplyAffixes(m *Metadata) {
	if m == nil {
		return
	}
	if m.Title != "" {
		m.Title = c.Affixes.TitlePrefix.apply(m.Title, "prefix")
		m.Title = c.Affixes.TitleSuffix.apply(m.Title, "suffix")
	}
	if m.Description != "" {
		m.Description = c.Affixes.DescriptionPrefix.apply(m.Description, "prefix")
		m.Description = c.Affixes.DescriptionSuffix.apply(m.Description, "suffix")
	}
}

// MeetsProfile reports whether generated metadata satisfies the fields the
// configured platform requires. A nil or fully empty result never satisfies.
func (c BatchConfig) MeetsProfile(m *Metadata) bool {
	if m == nil {
		return false
	}
	req := c.Platform.Requires()
	if req.Title && strings.TrimSpace(m.Title) == "" {
		return false
	}
	if req.Description && strings.TrimSpace(m.Description) == "" {
		return false
	}
	if req.Keywords && len(m.Keywords) == 0 {
		return false
	}
	// Guard against a provider returning a fully empty object for profiles
	// that only require a subset.
	return strings.TrimSpace(m.Title) != "" || strings.TrimSpace(m.Description) != "" || len(m.Keywords) > 0
}
