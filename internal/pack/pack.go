package pack

// Slide is one slide of the deck, ordered within the pack.
type Slide struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// QuizQuestion is one quiz item. Exactly one option equals CorrectAnswer.
type QuizQuestion struct {
	ID            string   `json:"id"`
	SkillID       string   `json:"skill_id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Difficulty    int      `json:"difficulty"`
	Hint          string   `json:"hint,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Exercise is one practice exercise with its answer key.
type Exercise struct {
	ID           string   `json:"id"`
	SkillID      string   `json:"skill_id"`
	Title        string   `json:"title"`
	Instructions string   `json:"instructions"`
	Problems     []string `json:"problems"`
	AnswerKey    []string `json:"answer_key"`
}

// VideoScript is the narration script for the pack's video asset.
type VideoScript struct {
	Title             string `json:"title"`
	Narration         string `json:"narration"`
	VisualDescription string `json:"visual_description"`
}

// Verification holds the deterministic post-generation checks. The checks
// annotate the pack; they never block generation.
type Verification struct {
	QuizValid  bool     `json:"quiz_valid"`
	Alignment  bool     `json:"alignment"`
	Curriculum bool     `json:"curriculum"`
	Notes      []string `json:"notes,omitempty"`
}

// AssetRefs holds references to externally rendered assets, attached
// asynchronously after the rendering backend completes.
type AssetRefs struct {
	SlidesURL string `json:"slides_url,omitempty"`
	VideoURL  string `json:"video_url,omitempty"`
}

// TeachingPack is the full generated bundle for one group. A pack is
// owned by a single group worker from planning through verification and
// is never mutated concurrently.
type TeachingPack struct {
	GroupID      string         `json:"group_id"`
	Slides       []Slide        `json:"slides,omitempty"`
	Quiz         []QuizQuestion `json:"quiz,omitempty"`
	Practice     []Exercise     `json:"practice,omitempty"`
	Video        *VideoScript   `json:"video,omitempty"`
	Verification *Verification  `json:"verification,omitempty"`
	Assets       AssetRefs      `json:"assets,omitempty"`

	// Errors records per-group failures (exhausted retries, contract
	// violations). A pack with errors still ships whatever was built.
	Errors []string `json:"errors,omitempty"`
}

// Failed reports whether the pipeline produced no usable content for
// this group. A pack with errors but at least one drafted asset still
// ships.
func (p *TeachingPack) Failed() bool {
	return len(p.Slides) == 0 && len(p.Quiz) == 0 && len(p.Practice) == 0 && p.Video == nil
}
