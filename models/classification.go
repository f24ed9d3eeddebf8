package models

// ClassificationResult is the oracle's structured reading of a requester's
// freeform message. Transient, never persisted.
type ClassificationResult struct {
	// Category is a canonical category slug, or empty when the oracle could
	// not identify one.
	Category string `json:"category"`
	// Districts is the ordered candidate list: the requested district first,
	// then its adjacent districts.
	Districts []string `json:"districts"`
	// Message is an optional natural-language aside for the user.
	Message string `json:"message,omitempty"`
}

// Draft is the freeform registration input collected by the dialog, before
// normalization.
type Draft struct {
	Name         string `json:"name"`
	DistrictText string `json:"districts"`
	ServiceText  string `json:"services"`
}

// CorrectedDraft is the oracle's text-correction output: the typo-fixed
// full name plus slug arrays drawn only from the canonical sets.
type CorrectedDraft struct {
	Name       string   `json:"name"`
	Districts  []string `json:"districts"`
	Categories []string `json:"categories"`
}

// CleanedDraft is the normalizer's output: corrected canonical values only.
// Empty slug arrays are a normalizer success; callers decide whether that
// blocks finalize.
type CleanedDraft struct {
	FirstName  string   `json:"firstName"`
	LastName   string   `json:"lastName"`
	Districts  []string `json:"districts"`
	Categories []string `json:"categories"`
}
