package model

import (
	"fmt"
	"strings"
)

// BusinessContext is the structured profile of the operator's own
// business, extracted from uploaded documents. All fields are optional;
// an empty profile still drives a (generic) discovery run. Instances are
// built fresh per document-processing cycle and not mutated afterwards.
type BusinessContext struct {
	CompanyName      string   `json:"company_name"`
	Industry         string   `json:"industry"`
	ProductsServices []string `json:"products_services"`
	TargetMarket     string   `json:"target_market"`
	Geography        []string `json:"geography"`
	KeyStrengths     []string `json:"key_strengths"`
	AdditionalNotes  string   `json:"additional_notes"`
}

// profileAliases maps each BusinessContext field to the response keys
// the model is known to emit for it, in priority order.
var profileAliases = map[string][]string{
	"company_name":      {"company_name", "company", "name"},
	"industry":          {"industry", "sector"},
	"products_services": {"products_services", "products", "services", "offerings"},
	"target_market":     {"target_market", "market", "customers"},
	"geography":         {"geography", "locations", "regions", "markets"},
	"key_strengths":     {"key_strengths", "strengths", "value_proposition", "differentiators"},
	"additional_notes":  {"additional_notes", "notes"},
}

// extraNoteKeys are response keys with no dedicated field; their values
// are appended to AdditionalNotes as "Key Name: value" sentences.
var extraNoteKeys = []string{"company_size", "business_model", "technology_stack"}

// DecodeProfile builds a BusinessContext from a loosely-shaped model
// response map, applying field aliasing and list/string coercion.
// Missing fields default to empty; DecodeProfile never fails.
func DecodeProfile(data map[string]any) BusinessContext {
	var ctx BusinessContext

	for field, keys := range profileAliases {
		for _, key := range keys {
			v, ok := data[key]
			if !ok {
				continue
			}
			switch field {
			case "products_services":
				ctx.ProductsServices = coerceList(v)
			case "geography":
				ctx.Geography = coerceList(v)
			case "key_strengths":
				ctx.KeyStrengths = coerceList(v)
			case "company_name":
				ctx.CompanyName = coerceString(v)
			case "industry":
				ctx.Industry = coerceString(v)
			case "target_market":
				ctx.TargetMarket = coerceString(v)
			case "additional_notes":
				ctx.AdditionalNotes = coerceString(v)
			}
			break
		}
	}

	var extra []string
	for _, key := range extraNoteKeys {
		v, ok := data[key]
		if !ok {
			continue
		}
		val := coerceString(v)
		if val == "" || strings.Contains(ctx.AdditionalNotes, val) {
			continue
		}
		extra = append(extra, fmt.Sprintf("%s: %s", titleKey(key), val))
	}
	if len(extra) > 0 {
		joined := strings.Join(extra, ". ")
		if ctx.AdditionalNotes != "" {
			ctx.AdditionalNotes = ctx.AdditionalNotes + ". " + joined
		} else {
			ctx.AdditionalNotes = joined
		}
	}

	return ctx
}

// coerceList accepts a list, a comma-separated string, or a bare string.
func coerceList(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s := strings.TrimSpace(fmt.Sprintf("%v", item))
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if strings.Contains(val, ",") {
			parts := strings.Split(val, ",")
			out := make([]string, 0, len(parts))
			for _, p := range parts {
				if s := strings.TrimSpace(p); s != "" {
					out = append(out, s)
				}
			}
			return out
		}
		if s := strings.TrimSpace(val); s != "" {
			return []string{s}
		}
		return nil
	default:
		return nil
	}
}

// coerceString accepts a string or joins a list into one.
func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(val, ", ")
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// titleKey turns "company_size" into "Company Size".
func titleKey(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// PromptString renders the populated fields as a labeled block for
// embedding in model prompts.
func (c BusinessContext) PromptString() string {
	var lines []string

	if c.CompanyName != "" {
		lines = append(lines, "Company: "+c.CompanyName)
	}
	if c.Industry != "" {
		lines = append(lines, "Industry: "+c.Industry)
	}
	if len(c.ProductsServices) > 0 {
		lines = append(lines, "Products/Services: "+strings.Join(c.ProductsServices, ", "))
	}
	if c.TargetMarket != "" {
		lines = append(lines, "Target Market: "+c.TargetMarket)
	}
	if len(c.Geography) > 0 {
		lines = append(lines, "Geography: "+strings.Join(c.Geography, ", "))
	}
	if len(c.KeyStrengths) > 0 {
		lines = append(lines, "Key Strengths: "+strings.Join(c.KeyStrengths, ", "))
	}
	if c.AdditionalNotes != "" {
		lines = append(lines, "Additional Notes: "+c.AdditionalNotes)
	}

	if len(lines) == 0 {
		return "No business context available"
	}
	return strings.Join(lines, "\n")
}

// Empty reports whether no field carries data.
func (c BusinessContext) Empty() bool {
	return c.CompanyName == "" && c.Industry == "" &&
		len(c.ProductsServices) == 0 && c.TargetMarket == "" &&
		len(c.Geography) == 0 && len(c.KeyStrengths) == 0 &&
		c.AdditionalNotes == ""
}
