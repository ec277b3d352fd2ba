package model

// Match is a (category, scheme) pair proposed by the classifier for one query
type Match struct {
	Category string `json:"category"`
	Scheme   string `json:"financial_scheme"`
}

// Result is the outcome of answering one question
type Result struct {
	RequestID string         `json:"request_id,omitempty"`
	Question  string         `json:"question"`
	Answer    string         `json:"answer"`
	Matches   []Match        `json:"matches"`
	Details   []SchemeRecord `json:"details"`

	// Degraded is set when a stage failed and the answer is a fallback
	Degraded bool   `json:"degraded,omitempty"`
	Error    string `json:"error,omitempty"`
}
