// Package model contains the dashboard content shapes shared by the
// data-access layer, the snapshot host and the probe.
package model

// Regulation is one row of the regulation matrix.
type Regulation struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	Jurisdiction   string   `json:"jurisdiction"`
	Status         string   `json:"status"`
	EffectiveDate  string   `json:"effectiveDate,omitempty"`
	RiskCategories []string `json:"riskCategories,omitempty"`
	Summary        string   `json:"summary"`
	URL            string   `json:"url,omitempty"`
}

// GovernanceFramework describes a governance standard or guideline.
type GovernanceFramework struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Organization string   `json:"organization"`
	Category     string   `json:"category"`
	Principles   []string `json:"principles,omitempty"`
	Description  string   `json:"description"`
}

// Resource is a further-reading link.
type Resource struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Kind        string `json:"type"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// Feedback is the payload of POST /api/feedback.
type Feedback struct {
	Content string `json:"content"`
}

// WriteAck is the body returned by a write, real or simulated.
type WriteAck struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
