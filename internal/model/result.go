package model

import (
	"time"

	"github.com/google/uuid"
)

// EntityType distinguishes customer and partner discovery runs.
type EntityType string

const (
	EntityCustomer EntityType = "customer"
	EntityPartner  EntityType = "partner"
)

// DiscoveryResult is the packaged output of a single discovery run.
type DiscoveryResult struct {
	RunID      string        `json:"run_id"`
	EntityType EntityType    `json:"entity_type"`
	Companies  []CompanyInfo `json:"companies"`
	QueryUsed  string        `json:"query_used"`
	Timestamp  time.Time     `json:"timestamp"`
	Scored     bool          `json:"scored"`
	AvgScore   float64       `json:"avg_score"`
}

// NewDiscoveryResult stamps a fresh result with a run ID and UTC time.
func NewDiscoveryResult(entityType EntityType, companies []CompanyInfo, queryUsed string) DiscoveryResult {
	return DiscoveryResult{
		RunID:      uuid.NewString(),
		EntityType: entityType,
		Companies:  companies,
		QueryUsed:  queryUsed,
		Timestamp:  time.Now().UTC(),
	}
}
