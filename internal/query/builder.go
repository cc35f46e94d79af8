// Package query generates targeted web-search query strings from a
// business profile. Generation is fully deterministic; no model calls
// are involved.
package query

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/discovery-cli/internal/model"
)

// Filters narrows query generation. All fields are optional.
type Filters struct {
	Geography       []string `json:"geography,omitempty"`
	Industry        []string `json:"industry,omitempty"`
	Size            string   `json:"size,omitempty"`
	PartnershipType string   `json:"partnership_type,omitempty"`
}

// Builder produces 3-5 distinct search queries per entity type by
// applying an ordered sequence of template strategies with fallback
// padding.
type Builder struct{}

// NewBuilder returns a query Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

const maxQueries = 5

// CustomerQueries generates search queries for finding potential
// customers. Always returns between 3 and 5 non-empty, pairwise
// distinct strings; missing profile data degrades to generic queries,
// never an empty list.
func (b *Builder) CustomerQueries(ctx model.BusinessContext, f Filters) []string {
	industry := ctx.Industry
	if industry == "" {
		industry = "businesses"
	}
	targetMarket := ctx.TargetMarket
	geography := extractGeography(ctx, f)

	q := newQuerySet()

	// Strategy 1: target market focus.
	if targetMarket != "" {
		q.add(withGeography(targetMarket, geography))
	}

	// Strategy 2: need statements per product, top 2.
	for _, product := range top2(ctx.ProductsServices) {
		subject := targetMarket
		if subject == "" {
			subject = "companies"
		}
		q.add(withGeography(subject+" needing "+strings.ToLower(product), geography))
	}

	// Strategy 3: industry-based, preferring filter industries.
	if len(f.Industry) > 0 {
		for _, ind := range top2(f.Industry) {
			q.add(withGeography(ind+" companies", geography))
		}
	} else {
		q.add(withGeography(baseIndustry(industry)+" companies", geography))
	}

	// Strategy 4: geography + industry combination.
	if geography != "" {
		q.add(baseIndustry(industry) + " businesses in " + geography)
	}

	// Strategy 5: size filter variant.
	if f.Size != "" && targetMarket != "" {
		q.add(withGeography(targetMarket+" "+f.Size, geography))
	}

	// Fallback padding until at least 3 queries exist.
	for len(q.queries) < 3 {
		var fallback string
		switch len(q.queries) {
		case 0:
			subject := targetMarket
			if subject == "" {
				subject = industry
			}
			fallback = withGeography(subject, geography)
		case 1:
			fallback = industry + " looking for growth"
		case 2:
			fallback = "potential " + industry + " customers"
		}
		if !q.add(fallback) {
			if geography != "" {
				q.add("businesses in " + geography)
			} else {
				q.add("companies")
			}
			break
		}
	}

	queries := q.take(maxQueries)
	zap.L().Info("generated customer search queries", zap.Int("count", len(queries)))
	return queries
}

// PartnerQueries generates search queries for finding potential
// partners. Same bounds and degradation guarantees as CustomerQueries.
func (b *Builder) PartnerQueries(ctx model.BusinessContext, f Filters) []string {
	industry := ctx.Industry
	if industry == "" {
		industry = "businesses"
	}
	geography := extractGeography(ctx, f)

	q := newQuerySet()

	// Strategy 1: partnership with our industry.
	q.add(withGeography("companies partnering with "+baseIndustry(industry)+" businesses", geography))

	// Strategy 2: integration with our products, top 2.
	for _, product := range top2(ctx.ProductsServices) {
		q.add(withGeography("companies integrating with "+strings.ToLower(product), geography))
	}

	// Strategy 3: technology partners for software businesses.
	lower := strings.ToLower(industry)
	if strings.Contains(lower, "saas") || strings.Contains(lower, "software") {
		q.add(withGeography("technology integration partners", geography))
	}

	// Strategy 4: explicit partnership type filter.
	if f.PartnershipType != "" {
		q.add(withGeography(f.PartnershipType+" partnership opportunities", geography))
	}

	// Strategy 5: filter industries, top 2.
	for _, ind := range top2(f.Industry) {
		q.add(withGeography(ind+" strategic partners", geography))
	}

	for len(q.queries) < 3 {
		var fallback string
		switch len(q.queries) {
		case 0:
			fallback = withGeography(baseIndustry(industry)+" partners", geography)
		case 1:
			fallback = "strategic " + industry + " partnerships"
		case 2:
			fallback = "complementary " + industry + " partners"
		}
		if !q.add(fallback) {
			if geography != "" {
				q.add("partnership opportunities in " + geography)
			} else {
				q.add("business partners")
			}
			break
		}
	}

	queries := q.take(maxQueries)
	zap.L().Info("generated partner search queries", zap.Int("count", len(queries)))
	return queries
}

// Refine applies filter constraints to an existing query: geography is
// appended unless the query already contains "in ", and the industry is
// prepended unless its token already appears. Single pass, no dedup.
func (b *Builder) Refine(base string, f Filters) string {
	refined := base

	if len(f.Geography) > 0 {
		geo := strings.Join(top2(f.Geography), ", ")
		if !strings.Contains(strings.ToLower(refined), "in ") {
			refined = refined + " in " + geo
		}
	}

	if len(f.Industry) > 0 {
		ind := f.Industry[0]
		if !strings.Contains(strings.ToLower(refined), strings.ToLower(ind)) {
			refined = ind + " " + refined
		}
	}

	if refined != base {
		zap.L().Debug("refined query",
			zap.String("base", base),
			zap.String("refined", refined),
		)
	}
	return refined
}

// querySet accumulates queries with a string-level duplicate guard.
type querySet struct {
	queries []string
	seen    map[string]bool
}

func newQuerySet() *querySet {
	return &querySet{seen: make(map[string]bool)}
}

// add appends q unless empty or already present. Reports whether the
// query was appended.
func (s *querySet) add(q string) bool {
	q = strings.TrimSpace(q)
	if q == "" || s.seen[q] {
		return false
	}
	s.queries = append(s.queries, q)
	s.seen[q] = true
	return true
}

func (s *querySet) take(n int) []string {
	if len(s.queries) > n {
		return s.queries[:n]
	}
	return s.queries
}

// withGeography appends " in {geo}" unless the base already contains
// "in " (case-insensitively).
func withGeography(base, geography string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	if geography != "" && !strings.Contains(strings.ToLower(base), "in ") {
		return base + " in " + geography
	}
	return base
}

// baseIndustry takes the text before the first "-", so
// "SaaS - Marketing Automation" becomes "SaaS".
func baseIndustry(industry string) string {
	head, _, _ := strings.Cut(industry, "-")
	return strings.TrimSpace(head)
}

// extractGeography prefers filter geography over profile geography,
// joining at most two regions.
func extractGeography(ctx model.BusinessContext, f Filters) string {
	if len(f.Geography) > 0 {
		return strings.Join(top2(f.Geography), ", ")
	}
	if len(ctx.Geography) > 0 {
		return strings.Join(top2(ctx.Geography), ", ")
	}
	return ""
}

func top2(items []string) []string {
	if len(items) > 2 {
		return items[:2]
	}
	return items
}
