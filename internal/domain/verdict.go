package domain

import "strings"

// Status is the verdict vocabulary returned by the analysis service.
// The vocabulary is not closed: unrecognized values are kept as-is.
type Status string

const (
	StatusHalal    Status = "halal"
	StatusHaram    Status = "haram"
	StatusDoubtful Status = "doubtful"
	StatusUnknown  Status = "unknown"
)

// Category returns the display category for s. Anything outside the four
// known verdicts is treated as StatusUnknown.
func (s Status) Category() Status {
	switch Status(strings.ToLower(string(s))) {
	case StatusHalal:
		return StatusHalal
	case StatusHaram:
		return StatusHaram
	case StatusDoubtful:
		return StatusDoubtful
	default:
		return StatusUnknown
	}
}

// Label is the upper-cased status as shown on badges.
func (s Status) Label() string {
	return strings.ToUpper(string(s))
}

// AnalysisResult is the verdict for a submitted label image.
type AnalysisResult struct {
	Status       Status   `json:"status"`
	LogoDetected bool     `json:"logo_detected"`
	MatchedText  string   `json:"matched_text"`
	Score        float64  `json:"score"` // meaningful only when LogoDetected is false
	Ingredients  []string `json:"ingredients,omitempty"`

	ingredientsBlock *string
	ocrText          *string
}

// NewAnalysisResult builds a result with its optional text fields.
// Nil or empty strings are recorded as absent.
func NewAnalysisResult(status Status, logo bool, matched string, score float64, ingredients []string, block, ocr *string) *AnalysisResult {
	r := &AnalysisResult{
		Status:       status,
		LogoDetected: logo,
		MatchedText:  matched,
		Score:        score,
	}
	if len(ingredients) > 0 {
		r.Ingredients = append([]string(nil), ingredients...)
	}
	r.ingredientsBlock = nonEmpty(block)
	r.ocrText = nonEmpty(ocr)
	return r
}

// HasIngredients reports whether a parsed ingredient list is present.
func (r *AnalysisResult) HasIngredients() bool {
	return len(r.Ingredients) > 0
}

// IngredientsBlock returns the raw ingredients block, if the service sent one.
func (r *AnalysisResult) IngredientsBlock() (string, bool) {
	if r.ingredientsBlock == nil {
		return "", false
	}
	return *r.ingredientsBlock, true
}

// OCRText returns the full OCR transcript, if the service sent one.
func (r *AnalysisResult) OCRText() (string, bool) {
	if r.ocrText == nil {
		return "", false
	}
	return *r.ocrText, true
}

// ChatMatch is a single knowledge base hit for a chat question.
type ChatMatch struct {
	MatchedText string  `json:"matched_text"`
	Score       float64 `json:"score"`
	Status      Status  `json:"status"`
}

// ChatResult holds the ranked matches for a question, best first.
type ChatResult struct {
	Question string      `json:"question,omitempty"`
	Results  []ChatMatch `json:"results"`
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
