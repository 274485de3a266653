package reports

// Status is the canonical lifecycle vocabulary for a generated report.
// Upstream has used several vocabularies over time; anything outside this
// set is normalized away before it reaches a view.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

var validStatuses = map[Status]struct{}{
	StatusPending:    {},
	StatusProcessing: {},
	StatusReady:      {},
	StatusFailed:     {},
}

// IsValid reports whether s is one of the canonical statuses.
func (s Status) IsValid() bool {
	_, ok := validStatuses[s]
	return ok
}

// Report is the canonical view model for one generated document. A report
// belongs to exactly one business.
type Report struct {
	ID         string  `json:"id"`
	ReportType string  `json:"report_type"`
	Status     Status  `json:"status"`
	CreatedAt  string  `json:"created_at"`
	CSVURL     *string `json:"csv_url,omitempty"`
	JSONURL    *string `json:"json_url,omitempty"`
	PDFURL     *string `json:"pdf_url,omitempty"`
}
