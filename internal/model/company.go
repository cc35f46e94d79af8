package model

import (
	"golang.org/x/text/cases"
)

var fold = cases.Fold()

// CompanyInfo is a discovered candidate customer or partner.
type CompanyInfo struct {
	Name         string      `json:"name"`
	Website      string      `json:"website"`
	Locations    []string    `json:"locations"`
	SizeEstimate string      `json:"size_estimate"`
	Description  string      `json:"description"`
	Sources      []string    `json:"sources"`
	MatchScore   *MatchScore `json:"match_score,omitempty"`
	Rationale    *Rationale  `json:"rationale,omitempty"`
}

// Key returns the case-folded (name, website) dedup key.
func (c CompanyInfo) Key() string {
	return fold.String(c.Name) + "|" + fold.String(c.Website)
}

// SameCompany reports whether two records refer to the same company:
// a case-insensitive match on either name or website.
func (c CompanyInfo) SameCompany(other CompanyInfo) bool {
	if fold.String(c.Name) == fold.String(other.Name) {
		return true
	}
	return c.Website != "" && fold.String(c.Website) == fold.String(other.Website)
}

// DedupeCompanies removes duplicates by Key, keeping first occurrence.
// Order is otherwise preserved.
func DedupeCompanies(companies []CompanyInfo) []CompanyInfo {
	seen := make(map[string]bool, len(companies))
	out := make([]CompanyInfo, 0, len(companies))
	for _, c := range companies {
		key := c.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
