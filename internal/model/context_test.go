package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeProfile_CanonicalKeys(t *testing.T) {
	ctx := DecodeProfile(map[string]any{
		"company_name":      "Acme Corp",
		"industry":          "SaaS - Marketing Automation",
		"products_services": []any{"Email platform", "Analytics"},
		"target_market":     "B2B - SMB marketing agencies",
		"geography":         []any{"North America", "Europe"},
		"key_strengths":     []any{"AI-powered optimization"},
		"additional_notes":  "Series A funded",
	})

	assert.Equal(t, "Acme Corp", ctx.CompanyName)
	assert.Equal(t, "SaaS - Marketing Automation", ctx.Industry)
	assert.Equal(t, []string{"Email platform", "Analytics"}, ctx.ProductsServices)
	assert.Equal(t, []string{"North America", "Europe"}, ctx.Geography)
	assert.Equal(t, "Series A funded", ctx.AdditionalNotes)
}

func TestDecodeProfile_Aliases(t *testing.T) {
	ctx := DecodeProfile(map[string]any{
		"company":   "Beta Inc",
		"sector":    "Healthcare",
		"offerings": []any{"Clinics"},
		"customers": "hospitals",
		"regions":   []any{"Asia"},
		"strengths": []any{"scale"},
	})

	assert.Equal(t, "Beta Inc", ctx.CompanyName)
	assert.Equal(t, "Healthcare", ctx.Industry)
	assert.Equal(t, []string{"Clinics"}, ctx.ProductsServices)
	assert.Equal(t, "hospitals", ctx.TargetMarket)
	assert.Equal(t, []string{"Asia"}, ctx.Geography)
	assert.Equal(t, []string{"scale"}, ctx.KeyStrengths)
}

func TestDecodeProfile_CommaStringCoercion(t *testing.T) {
	ctx := DecodeProfile(map[string]any{
		"geography": "USA, Canada",
		"products":  "Email platform",
	})
	assert.Equal(t, []string{"USA", "Canada"}, ctx.Geography)
	assert.Equal(t, []string{"Email platform"}, ctx.ProductsServices)
}

func TestDecodeProfile_ListToStringCoercion(t *testing.T) {
	ctx := DecodeProfile(map[string]any{
		"target_market": []any{"agencies", "consultancies"},
	})
	assert.Equal(t, "agencies, consultancies", ctx.TargetMarket)
}

func TestDecodeProfile_ExtraKeysAppendToNotes(t *testing.T) {
	ctx := DecodeProfile(map[string]any{
		"additional_notes": "Bootstrap",
		"company_size":     "50-100 employees",
		"business_model":   "subscription",
	})
	assert.Contains(t, ctx.AdditionalNotes, "Bootstrap")
	assert.Contains(t, ctx.AdditionalNotes, "Company Size: 50-100 employees")
	assert.Contains(t, ctx.AdditionalNotes, "Business Model: subscription")
}

func TestDecodeProfile_Empty(t *testing.T) {
	ctx := DecodeProfile(map[string]any{})
	assert.True(t, ctx.Empty())
	assert.Equal(t, "No business context available", ctx.PromptString())
}

func TestPromptString_PopulatedFieldsOnly(t *testing.T) {
	ctx := BusinessContext{
		CompanyName: "Acme",
		Geography:   []string{"USA"},
	}
	s := ctx.PromptString()
	assert.Contains(t, s, "Company: Acme")
	assert.Contains(t, s, "Geography: USA")
	assert.NotContains(t, s, "Industry")
	assert.NotContains(t, s, "Target Market")
}
