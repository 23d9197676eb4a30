package domain

// FinancialData is one quarter of the static chart series returned with a
// successful phase one. The field names match what the confirmation page
// plots.
type FinancialData struct {
	Quarter    string   `json:"quarter"`
	Profit     int64    `json:"profit"`
	Percentage *float64 `json:"percentage,omitempty"`
	YoY        *string  `json:"yoy,omitempty"`
	QoQ        *string  `json:"qoq,omitempty"`
}
