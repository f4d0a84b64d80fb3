package models

// LanguageContext is passed through to content providers so generated
// material matches the learner's language pair and level.
type LanguageContext struct {
	SourceLang  string `json:"source_lang"`
	TargetLang  string `json:"target_lang"`
	Proficiency string `json:"proficiency"`
}

// Narrative is a short review story weaving the session's phrases together.
type Narrative struct {
	Text      string            `json:"text"`
	PhraseIDs []int64           `json:"phrase_ids"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// DrillBlank marks one gap in a drill exercise.
type DrillBlank struct {
	Position     int      `json:"position"`
	Answer       string   `json:"answer"`
	Alternatives []string `json:"alternatives,omitempty"`
}

// DrillExercise is a fill-in-the-blank recall check for a single phrase.
type DrillExercise struct {
	PhraseID    int64        `json:"phrase_id"`
	Text        string       `json:"text"`
	Blanks      []DrillBlank `json:"blanks"`
	Explanation string       `json:"explanation,omitempty"`
}
