package usecase

import (
	"math"
	"math/big"
	"strconv"

	"github.com/halalcheck/client/internal/domain"
)

// badgeClasses maps each display category to its badge styling.
var badgeClasses = map[domain.Status]string{
	domain.StatusHalal:    "badge badge-halal",
	domain.StatusHaram:    "badge badge-haram",
	domain.StatusDoubtful: "badge badge-doubtful",
	domain.StatusUnknown:  "badge badge-unknown",
}

// AnalysisView is everything the upload page needs to render a verdict.
type AnalysisView struct {
	StatusLabel string   `json:"status_label"`
	Category    string   `json:"category"`
	BadgeClass  string   `json:"badge_class"`
	MatchedText string   `json:"matched_text"`
	ShowScore   bool     `json:"show_score"`
	ScorePct    string   `json:"score_percent,omitempty"`
	ShowChips   bool     `json:"show_ingredients"`
	Ingredients []string `json:"ingredients,omitempty"`

	ShowIngredientsBlock bool   `json:"show_ingredients_block"`
	IngredientsBlock     string `json:"ingredients_block,omitempty"`
	ShowOCRText          bool   `json:"show_ocr_text"`
	OCRText              string `json:"ocr_text,omitempty"`
}

// MatchCard is one ranked chat match.
type MatchCard struct {
	Rank        int    `json:"rank"`
	ScorePct    string `json:"score_percent"`
	MatchedText string `json:"matched_text"`
	StatusLabel string `json:"status_label"`
}

// ChatView is everything the chatbot page needs to render an answer.
type ChatView struct {
	NoMatches bool        `json:"no_matches"`
	Matches   []MatchCard `json:"matches"`
}

// FormatPercent renders a [0,1] score as a percentage with one decimal.
// Ties on the exact binary value round away from zero, so 0.0625 gives "6.3".
func FormatPercent(score float64) string {
	pct := score * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return strconv.FormatFloat(pct, 'f', 1, 64)
	}

	sign := ""
	if pct < 0 {
		sign, pct = "-", -pct
	}

	// pct*10 + 0.5 is exact at this precision for any score in range.
	tenths := new(big.Float).SetPrec(256).SetFloat64(pct)
	tenths.Mul(tenths, big.NewFloat(10))
	tenths.Add(tenths, big.NewFloat(0.5))
	n, _ := tenths.Int(nil)

	digits := n.String()
	if len(digits) < 2 {
		digits = "0" + digits
	}
	return sign + digits[:len(digits)-1] + "." + digits[len(digits)-1:]
}

// BadgeClass returns the badge styling for a status; unrecognized values get
// the neutral unknown treatment.
func BadgeClass(status domain.Status) string {
	return badgeClasses[status.Category()]
}

// BuildAnalysisView derives the verdict panel from a result
func BuildAnalysisView(result *domain.AnalysisResult) *AnalysisView {
	if result == nil {
		return nil
	}

	view := &AnalysisView{
		StatusLabel: result.Status.Label(),
		Category:    string(result.Status.Category()),
		BadgeClass:  BadgeClass(result.Status),
		MatchedText: result.MatchedText,
	}

	if !result.LogoDetected {
		view.ShowScore = true
		view.ScorePct = FormatPercent(result.Score)
		if result.HasIngredients() {
			view.ShowChips = true
			view.Ingredients = result.Ingredients
		}
	}

	if block, ok := result.IngredientsBlock(); ok {
		view.ShowIngredientsBlock = true
		view.IngredientsBlock = block
	}
	if text, ok := result.OCRText(); ok {
		view.ShowOCRText = true
		view.OCRText = text
	}

	return view
}

// BuildChatView numbers the matches 1..N in response order
func BuildChatView(result *domain.ChatResult) *ChatView {
	if result == nil {
		return nil
	}

	view := &ChatView{
		NoMatches: len(result.Results) == 0,
		Matches:   make([]MatchCard, 0, len(result.Results)),
	}
	for i, m := range result.Results {
		view.Matches = append(view.Matches, MatchCard{
			Rank:        i + 1,
			ScorePct:    FormatPercent(m.Score),
			MatchedText: m.MatchedText,
			StatusLabel: m.Status.Label(),
		})
	}
	return view
}
