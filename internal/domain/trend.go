package domain

// Trend is one discovered microstock niche with market signals.
type Trend struct {
	ID                string `json:"id"`
	Topic             string `json:"topic"`
	Niche             string `json:"niche"`
	Competition       string `json:"competition"`
	Category          string `json:"category"`
	Description       string `json:"description"`
	PotentialEarnings string `json:"potential_earnings"`
	PopularityScore   int    `json:"popularity_score"`
	TrendHistory      []int  `json:"trend_history"`
}

// TopicAnalysis is the deep-dive result for a single topic.
type TopicAnalysis struct {
	OriginalQuery   string             `json:"original_query"`
	NichePath       string             `json:"niche_path"`
	SearchVolume    string             `json:"search_volume"`
	Difficulty      string             `json:"difficulty"`
	VisualStyle     string             `json:"visual_style"`
	Composition     string             `json:"composition"`
	SuggestedPrompt string             `json:"suggested_prompt"`
	RelatedKeywords []string           `json:"related_keywords"`
	Alternatives    []TopicAlternative `json:"low_competition_alternatives"`
}

// TopicAlternative is a lower-competition topic suggested by the analysis.
type TopicAlternative struct {
	Topic  string `json:"topic"`
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// NicheScore is one side of a niche comparison.
type NicheScore struct {
	Name  string   `json:"name"`
	Score int      `json:"score"`
	Pros  []string `json:"pros"`
	Cons  []string `json:"cons"`
}

// NicheComparison is the verdict of pitting two niches against each other.
type NicheComparison struct {
	Winner       string     `json:"winner"`
	WinnerReason string     `json:"winner_reason"`
	TopicA       NicheScore `json:"topic_a"`
	TopicB       NicheScore `json:"topic_b"`
}
