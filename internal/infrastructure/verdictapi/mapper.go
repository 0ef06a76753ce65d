package verdictapi

import (
	"encoding/json"
	"strings"

	"github.com/halalcheck/client/internal/domain"
)

// analysisResponse is the wire shape of POST /api/analyze.
type analysisResponse struct {
	Status           string   `json:"status"`
	LogoDetected     bool     `json:"logo_detected"`
	MatchedText      string   `json:"matched_text"`
	Score            float64  `json:"score"`
	Ingredients      []string `json:"ingredients"`
	IngredientsBlock *string  `json:"ingredients_block"`
	OCRText          *string  `json:"ocr_text"`
}

// chatResponse is the wire shape of POST /api/chat.
type chatResponse struct {
	Question string `json:"question"`
	Results  []struct {
		MatchedText string  `json:"matched_text"`
		Score       float64 `json:"score"`
		Status      string  `json:"status"`
	} `json:"results"`
}

type chatRequest struct {
	Question string `json:"question"`
}

// errorResponse is the body of a non-2xx reply. Detail is a plain string for
// handled errors and a list of objects for request validation failures.
type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// MapAnalysis converts the wire response into a domain.AnalysisResult
func MapAnalysis(resp *analysisResponse) *domain.AnalysisResult {
	if resp == nil {
		return nil
	}
	status := domain.Status(resp.Status)
	if status == "" {
		status = domain.StatusUnknown
	}
	return domain.NewAnalysisResult(
		status,
		resp.LogoDetected,
		resp.MatchedText,
		clampScore(resp.Score),
		resp.Ingredients,
		resp.IngredientsBlock,
		resp.OCRText,
	)
}

// MapChat converts the wire response into a domain.ChatResult
func MapChat(resp *chatResponse) *domain.ChatResult {
	if resp == nil {
		return nil
	}
	result := &domain.ChatResult{
		Question: resp.Question,
		Results:  make([]domain.ChatMatch, 0, len(resp.Results)),
	}
	for _, r := range resp.Results {
		status := domain.Status(r.Status)
		if status == "" {
			status = domain.StatusUnknown
		}
		result.Results = append(result.Results, domain.ChatMatch{
			MatchedText: r.MatchedText,
			Score:       clampScore(r.Score),
			Status:      status,
		})
	}
	return result
}

// parseDetail extracts a human readable message from an error body.
func parseDetail(body []byte) string {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(resp.Detail, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(resp.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if m := strings.TrimSpace(it.Msg); m != "" {
				msgs = append(msgs, m)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
