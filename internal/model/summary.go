package model

// UploadSummary aggregates the outcome of one upload invocation.
type UploadSummary struct {
	Total         int `json:"total"`          // leads handed to the coordinator
	MissingKey    int `json:"missing_key"`    // dropped: empty business key
	MissingFields int `json:"missing_fields"` // dropped: incomplete required fields
	Candidates    int `json:"candidates"`     // unique keys that survived filtering
	Duplicates    int `json:"duplicates"`     // already present in the remote store
	Created       int `json:"created"`
	Failed        int `json:"failed"`
}
