package usecase

import (
	"fmt"
	"math"
	"testing"

	"github.com/halalcheck/client/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0, "0.0"},
		{1, "100.0"},
		{0.87, "87.0"},
		{0.5, "50.0"},
		{0.123, "12.3"},
		{0.9999, "100.0"},
		{0.0004, "0.0"},
		{0.0625, "6.3"},
		{0.8125, "81.3"},
		{0.0005, "0.1"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.score), func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPercent(tt.score))
		})
	}
}

func TestFormatPercent_MatchesRoundedValue(t *testing.T) {
	for i := 0; i <= 1000; i++ {
		score := float64(i) / 1000
		want := math.Round(score*1000) / 10
		assert.Equal(t, fmt.Sprintf("%.1f", want), FormatPercent(score), "score %v", score)
	}
}

func TestFormatPercent_ExactTiesRoundUp(t *testing.T) {
	// k/16 are exact in binary, so k/16*100 lands on a .x5 tie for odd k.
	for k := 0; k <= 16; k++ {
		score := float64(k) / 16
		want := math.Floor(score*1000+0.5) / 10
		assert.Equal(t, fmt.Sprintf("%.1f", want), FormatPercent(score), "score %v", score)
	}
}

func TestBadgeClass(t *testing.T) {
	assert.Equal(t, "badge badge-halal", BadgeClass(domain.StatusHalal))
	assert.Equal(t, "badge badge-haram", BadgeClass(domain.StatusHaram))
	assert.Equal(t, "badge badge-doubtful", BadgeClass(domain.StatusDoubtful))
	assert.Equal(t, "badge badge-unknown", BadgeClass(domain.StatusUnknown))
	assert.Equal(t, "badge badge-unknown", BadgeClass(domain.Status("makruh")))
	assert.Equal(t, "badge badge-halal", BadgeClass(domain.Status("HALAL")))
}

func TestBuildAnalysisView(t *testing.T) {
	t.Run("nil result", func(t *testing.T) {
		assert.Nil(t, BuildAnalysisView(nil))
	})

	t.Run("logo detected hides score and chips", func(t *testing.T) {
		view := BuildAnalysisView(domain.NewAnalysisResult(domain.StatusHalal, true, "Certified logo found", 0.3, []string{"sugar"}, nil, nil))

		assert.Equal(t, "HALAL", view.StatusLabel)
		assert.Equal(t, "Certified logo found", view.MatchedText)
		assert.False(t, view.ShowScore)
		assert.Empty(t, view.ScorePct)
		assert.False(t, view.ShowChips)
	})

	t.Run("no logo shows score and chips", func(t *testing.T) {
		view := BuildAnalysisView(domain.NewAnalysisResult(domain.StatusHaram, false, "lard", 0.8766,
			[]string{"flour", "lard"}, strPtr("Ingredients: flour, lard"), strPtr("OCR")))

		assert.True(t, view.ShowScore)
		assert.Equal(t, "87.7", view.ScorePct)
		assert.True(t, view.ShowChips)
		assert.Equal(t, []string{"flour", "lard"}, view.Ingredients)
		assert.True(t, view.ShowIngredientsBlock)
		assert.Equal(t, "Ingredients: flour, lard", view.IngredientsBlock)
		assert.True(t, view.ShowOCRText)
		assert.Equal(t, "badge badge-haram", view.BadgeClass)
	})

	t.Run("no logo without ingredients", func(t *testing.T) {
		view := BuildAnalysisView(domain.NewAnalysisResult(domain.StatusUnknown, false, "", 0, nil, nil, nil))

		assert.True(t, view.ShowScore)
		assert.Equal(t, "0.0", view.ScorePct)
		assert.False(t, view.ShowChips)
		assert.False(t, view.ShowIngredientsBlock)
		assert.False(t, view.ShowOCRText)
	})

	t.Run("raw block shown even with logo", func(t *testing.T) {
		view := BuildAnalysisView(domain.NewAnalysisResult(domain.StatusHalal, true, "", 1, nil, strPtr("block"), nil))
		assert.True(t, view.ShowIngredientsBlock)
	})

	t.Run("unrecognized status keeps label", func(t *testing.T) {
		view := BuildAnalysisView(domain.NewAnalysisResult(domain.Status("mushbooh"), false, "", 0.2, nil, nil, nil))
		assert.Equal(t, "MUSHBOOH", view.StatusLabel)
		assert.Equal(t, "unknown", view.Category)
		assert.Equal(t, "badge badge-unknown", view.BadgeClass)
	})
}

func TestBuildChatView(t *testing.T) {
	assert.Nil(t, BuildChatView(nil))

	result := &domain.ChatResult{Results: []domain.ChatMatch{
		{MatchedText: "first", Score: 0.9, Status: domain.StatusHalal},
		{MatchedText: "second", Score: 0.75, Status: domain.StatusDoubtful},
		{MatchedText: "third", Score: 0.6, Status: domain.Status("other")},
	}}

	view := BuildChatView(result)
	require.Len(t, view.Matches, 3)
	assert.False(t, view.NoMatches)
	for i, card := range view.Matches {
		assert.Equal(t, i+1, card.Rank)
		assert.Equal(t, result.Results[i].MatchedText, card.MatchedText)
	}
	assert.Equal(t, "75.0", view.Matches[1].ScorePct)
	assert.Equal(t, "OTHER", view.Matches[2].StatusLabel)
}
