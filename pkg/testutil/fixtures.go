package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DealerFixture represents test dealer data
type DealerFixture struct {
	ID          string
	AccountID   string
	CompanyName string
	ContactName string
	Email       string
	Phone       string
	City        string
	State       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NoteFixture represents test dealer note data
type NoteFixture struct {
	ID        string
	DealerID  string
	AccountID string
	Kind      string
	Body      string
	Done      bool
	CreatedAt time.Time
}

// FixtureFactory creates test fixtures with sensible defaults
type FixtureFactory struct {
	sequence  int
	accountID string
}

// NewFixtureFactory creates a new fixture factory scoped to one account
func NewFixtureFactory() *FixtureFactory {
	return &FixtureFactory{accountID: uuid.New().String()}
}

// AccountID returns the account all fixtures from this factory belong to
func (f *FixtureFactory) AccountID() string {
	return f.accountID
}

// nextSeq returns the next sequence number for unique values
func (f *FixtureFactory) nextSeq() int {
	f.sequence++
	return f.sequence
}

// Dealer creates a dealer fixture with defaults
func (f *FixtureFactory) Dealer(opts ...func(*DealerFixture)) DealerFixture {
	seq := f.nextSeq()

	dealer := DealerFixture{
		ID:          uuid.New().String(),
		AccountID:   f.accountID,
		CompanyName: fmt.Sprintf("Test Company %d", seq),
		ContactName: fmt.Sprintf("Contact %d", seq),
		Email:       fmt.Sprintf("contact%d@example.com", seq),
		Phone:       fmt.Sprintf("+1 555 01%02d", seq%100),
		City:        "Chicago",
		State:       "IL",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	for _, opt := range opts {
		opt(&dealer)
	}

	return dealer
}

// WithCompany sets the dealer company name
func WithCompany(name string) func(*DealerFixture) {
	return func(d *DealerFixture) {
		d.CompanyName = name
	}
}

// WithContact sets the dealer contact name
func WithContact(name string) func(*DealerFixture) {
	return func(d *DealerFixture) {
		d.ContactName = name
	}
}

// WithLocation sets the dealer city and state
func WithLocation(city, state string) func(*DealerFixture) {
	return func(d *DealerFixture) {
		d.City = city
		d.State = state
	}
}

// Note creates a dealer note fixture with defaults
func (f *FixtureFactory) Note(dealerID string, opts ...func(*NoteFixture)) NoteFixture {
	seq := f.nextSeq()

	note := NoteFixture{
		ID:        uuid.New().String(),
		DealerID:  dealerID,
		AccountID: f.accountID,
		Kind:      "note",
		Body:      fmt.Sprintf("Test note %d", seq),
		CreatedAt: time.Now(),
	}

	for _, opt := range opts {
		opt(&note)
	}

	return note
}

// AsTodo marks the note fixture as a to-do
func AsTodo() func(*NoteFixture) {
	return func(n *NoteFixture) {
		n.Kind = "todo"
	}
}

// SampleBadgeText is a typical OCR output for a trade-show badge: person
// name split over two lines, company line, and a location line.
const SampleBadgeText = "RYAN\nSKOLNICK\nGLEN DIMPLEX AMERICAS\nCAMBRIDGE, CANADA"

// NoisyBadgeText mixes usable lines with OCR artifacts (barcode soup,
// decorative rules) that the sanitizer should drop.
const NoisyBadgeText = "|||#%@!||\nJane Doe\n----------\nAcme Robotics Inc\n*#*"
