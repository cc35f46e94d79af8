package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMatchScore_ClampsHigh(t *testing.T) {
	s := NewMatchScore(MatchScore{OverallScore: 150, RelevanceScore: 101})
	assert.Equal(t, 100.0, s.OverallScore)
	assert.Equal(t, 100.0, s.RelevanceScore)
}

func TestNewMatchScore_ClampsLow(t *testing.T) {
	s := NewMatchScore(MatchScore{OverallScore: -10, GeographicFit: -0.5})
	assert.Equal(t, 0.0, s.OverallScore)
	assert.Equal(t, 0.0, s.GeographicFit)
}

func TestNewMatchScore_InvalidConfidenceCoercedToLow(t *testing.T) {
	s := NewMatchScore(MatchScore{Confidence: "Very High"})
	assert.Equal(t, ConfidenceLow, s.Confidence)

	s = NewMatchScore(MatchScore{Confidence: ConfidenceHigh})
	assert.Equal(t, ConfidenceHigh, s.Confidence)
}

func TestNewMatchScore_BreakdownAutoPopulated(t *testing.T) {
	s := NewMatchScore(MatchScore{
		RelevanceScore:      90,
		GeographicFit:       80,
		SizeAppropriateness: 70,
		StrategicAlignment:  60,
	})
	assert.Equal(t, 90.0, s.Breakdown["relevance"])
	assert.Equal(t, 80.0, s.Breakdown["geographic"])
	assert.Equal(t, 70.0, s.Breakdown["size"])
	assert.Equal(t, 60.0, s.Breakdown["strategic"])
}

func TestNewMatchScore_ExistingBreakdownKept(t *testing.T) {
	s := NewMatchScore(MatchScore{
		RelevanceScore: 90,
		Breakdown:      map[string]float64{"relevance": 12},
	})
	assert.Equal(t, 12.0, s.Breakdown["relevance"])
}
