package domain

import "time"

// DetailStatus classifies how a single detail lookup ended.
type DetailStatus string

const (
	DetailOK             DetailStatus = "ok"
	DetailHTTPError      DetailStatus = "http_error"
	DetailTransportError DetailStatus = "transport_error"
	DetailMalformed      DetailStatus = "malformed"
)

// DetailOutcome records what happened for one service domain's lookup.
type DetailOutcome struct {
	BianID        string       `json:"bianId"`
	Status        DetailStatus `json:"status"`
	StatusCode    int          `json:"statusCode,omitempty"`
	LatencyMS     int64        `json:"latencyMs"`
	Message       string       `json:"message,omitempty"`
	MissingFields []string     `json:"missingFields,omitempty"`
}

// Enriched reports whether the row got at least one real characteristic.
func (o DetailOutcome) Enriched() bool {
	return o.Status == DetailOK || (o.Status == DetailMalformed && len(o.MissingFields) < 3)
}

// DetailResult is what a detail fetcher hands back: the parsed detail (nil when absent)
// plus the outcome used for logging and the run report.
type DetailResult struct {
	Detail  *DomainDetail
	Outcome DetailOutcome
}

// RunReport is the persisted record of one export run.
type RunReport struct {
	ID         string `json:"id"`
	BaseURL    string `json:"baseUrl"`
	OutputPath string `json:"outputPath"`

	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`

	Total    int `json:"total"`
	Enriched int `json:"enriched"`
	Fallback int `json:"fallback"`

	Outcomes []DetailOutcome `json:"outcomes"`
}

// ExportResult is what the export use case returns to the caller.
type ExportResult struct {
	Rows     []OutputRow
	Report   RunReport
	ReportID string
}
