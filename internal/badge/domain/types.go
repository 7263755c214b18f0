package domain

import "time"

// ScanState is the resolution state of one badge capture event.
// A capture starts Idle, moves to Scanning while the pipeline runs, and
// lands in exactly one of the three terminal states. A new capture starts
// a fresh session at Idle.
type ScanState string

const (
	StateIdle           ScanState = "idle"
	StateScanning       ScanState = "scanning"
	StateAutoResolved   ScanState = "auto_resolved"
	StateDisambiguating ScanState = "disambiguating"
	StateManualFallback ScanState = "manual_fallback"
)

// Terminal reports whether the state ends the pipeline for this capture.
func (s ScanState) Terminal() bool {
	return s == StateAutoResolved || s == StateDisambiguating || s == StateManualFallback
}

// FallbackReason explains why a scan landed in manual fallback.
type FallbackReason string

const (
	FallbackNoText        FallbackReason = "no_text"
	FallbackNoTerms       FallbackReason = "no_terms"
	FallbackNoCandidates  FallbackReason = "no_candidates"
	FallbackPipelineError FallbackReason = "pipeline_error"
	FallbackUserCreateNew FallbackReason = "user_create_new"
)

// Capture is the photographed badge image. It is owned exclusively by one
// scan session and retained only so it can be attached to whichever dealer
// the session ultimately resolves or creates.
type Capture struct {
	Data     []byte `json:"-"`
	MimeType string `json:"mime_type"`
}

// DealerCandidate is one dealer returned by the fuzzy roster search.
// Score is the search backend's provisional ranking; it is advisory only
// and superseded by the match scorer.
type DealerCandidate struct {
	ID          string  `json:"id"`
	CompanyName string  `json:"company_name"`
	ContactName string  `json:"contact_name"`
	Email       string  `json:"email,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	City        string  `json:"city,omitempty"`
	State       string  `json:"state,omitempty"`
	Score       float64 `json:"score"`
}

// ScoredCandidate is a DealerCandidate re-scored against the badge words.
type ScoredCandidate struct {
	DealerCandidate
	// MatchScore is the recomputed integer score from word-level evidence
	MatchScore int `json:"match_score"`
	// ContactWordMatches counts badge words found in the contact name
	ContactWordMatches int `json:"contact_word_matches"`
	// CompanyWordMatches counts badge words found in the company name
	CompanyWordMatches int `json:"company_word_matches"`
}

// DealerForm is the manual-entry form submitted when a scan falls back
// to manual dealer creation.
type DealerForm struct {
	CompanyName string `json:"company_name" validate:"required,min=1,max=200"`
	ContactName string `json:"contact_name" validate:"required,min=1,max=200"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"omitempty,max=40"`
	City        string `json:"city" validate:"omitempty,max=100"`
	State       string `json:"state" validate:"omitempty,max=100"`
}

// Prefill is the best-effort field guess for the manual-entry form.
// It is never authoritative; the form stays fully editable.
type Prefill struct {
	ContactName string `json:"contact_name"`
	CompanyName string `json:"company_name"`
}

// Session is the state of one badge capture event, kept in memory between
// the scan request and the user's follow-up (select / create-new / submit).
type Session struct {
	ScanID    string    `json:"scan_id"`
	AccountID string    `json:"account_id"`
	State     ScanState `json:"state"`

	// Capture is retained for attach-on-resolve / attach-on-save
	Capture Capture `json:"capture"`

	// Lines is the sanitized badge text, kept so a later fallback can
	// still pre-fill the manual form
	Lines []string `json:"-"`

	// Candidates is the ranked list shown while disambiguating
	Candidates []ScoredCandidate `json:"candidates,omitempty"`

	// Confidence of the top candidate, on the 0-1 policy scale
	Confidence float64 `json:"confidence,omitempty"`

	// DealerID is set once the session resolves to a dealer
	DealerID string `json:"dealer_id,omitempty"`

	// Prefill is set when the session falls back to manual entry
	Prefill *Prefill `json:"prefill,omitempty"`

	// Reason is set for manual-fallback sessions
	Reason FallbackReason `json:"reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
