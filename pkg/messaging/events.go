package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// Dealer events
	EventDealerCreated       = "dealer.created"
	EventDealerUpdated       = "dealer.updated"
	EventDealerDeleted       = "dealer.deleted"
	EventDealerNoteCreated   = "dealer.note.created"
	EventDealerImageAttached = "dealer.image.attached"

	// Badge scan events
	EventScanResolved      = "scan.badge.resolved"
	EventScanDisambiguated = "scan.badge.disambiguated"
	EventScanFallback      = "scan.badge.fallback"

	// User events consumed from the identity service
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// Exchange names
const (
	ExchangeDealerEvents = "dealer.events"
	ExchangeScanEvents   = "scan.events"
	ExchangeUserEvents   = "user.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return uuid.New().String()
}

// Dealer events

// DealerCreatedEvent is published when a dealer record is created
type DealerCreatedEvent struct {
	DealerID    string `json:"dealer_id"`
	AccountID   string `json:"account_id"`
	CompanyName string `json:"company_name"`
	ContactName string `json:"contact_name"`
	// Source distinguishes manual CRUD from badge-scan fallback creation
	Source string `json:"source"` // "manual" | "badge_scan"
}

// DealerUpdatedEvent is published when a dealer record is updated
type DealerUpdatedEvent struct {
	DealerID  string         `json:"dealer_id"`
	AccountID string         `json:"account_id"`
	Fields    map[string]any `json:"fields"` // Changed fields
}

// DealerDeletedEvent is published when a dealer record is soft-deleted
type DealerDeletedEvent struct {
	DealerID  string `json:"dealer_id"`
	AccountID string `json:"account_id"`
}

// DealerNoteCreatedEvent is published when a note or to-do is added to a dealer
type DealerNoteCreatedEvent struct {
	NoteID   string `json:"note_id"`
	DealerID string `json:"dealer_id"`
	Kind     string `json:"kind"` // "note" | "todo"
}

// DealerImageAttachedEvent is published when an image is attached to a dealer
type DealerImageAttachedEvent struct {
	ImageID  string `json:"image_id"`
	DealerID string `json:"dealer_id"`
	Kind     string `json:"kind"` // "badge" | "logo" | "photo"
}

// Badge scan events

// ScanResolvedEvent is published when a badge scan resolves to a dealer,
// either automatically or after the user picked from the candidate list.
type ScanResolvedEvent struct {
	ScanID     string  `json:"scan_id"`
	DealerID   string  `json:"dealer_id"`
	AccountID  string  `json:"account_id"`
	Confidence float64 `json:"confidence"`
	Auto       bool    `json:"auto"` // true when no user confirmation was needed
}

// ScanDisambiguatedEvent is published when a scan produced a candidate list
// that needs user review.
type ScanDisambiguatedEvent struct {
	ScanID     string `json:"scan_id"`
	AccountID  string `json:"account_id"`
	Candidates int    `json:"candidates"`
}

// ScanFallbackEvent is published when a scan fell through to manual entry.
type ScanFallbackEvent struct {
	ScanID    string `json:"scan_id"`
	AccountID string `json:"account_id"`
	Reason    string `json:"reason"` // "no_text" | "no_terms" | "no_candidates" | "pipeline_error" | "user_create_new"
}

// User events (published by the identity service, consumed here to keep a
// local cache for resolving created_by audit fields)

// UserCreatedEvent is consumed when the identity service creates a user
type UserCreatedEvent struct {
	UserID    string `json:"user_id"`
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// UserUpdatedEvent is consumed when the identity service updates a user
type UserUpdatedEvent struct {
	UserID    string         `json:"user_id"`
	AccountID string         `json:"account_id"`
	Fields    map[string]any `json:"fields"` // Changed fields, {"name": {"to": "..."}} style
}

// UserDeletedEvent is consumed when the identity service deletes a user
type UserDeletedEvent struct {
	UserID    string `json:"user_id"`
	AccountID string `json:"account_id"`
}
