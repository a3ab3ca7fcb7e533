package events

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// EventDocument is the full nested event a host edits and publishes.
// A draft lives only in the host's own collection; once published an
// identical copy also exists in the global published table.
type EventDocument struct {
	ID           string       `json:"eventId"`
	HostUID      string       `json:"hostUid"`
	Status       Status       `json:"status"`
	BasicDetails BasicDetails `json:"basicDetails"`
	Schedule     Schedule     `json:"schedule"`
	Tickets      TicketConfig `json:"tickets"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	PublishedAt  *time.Time   `json:"publishedAt,omitempty"`
}

type BasicDetails struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Genres           []string `json:"genres"`
	Languages        []string `json:"languages"`
	AgeLimit         string   `json:"ageLimit"`
	DurationMinutes  int      `json:"durationMinutes"`
	TermsAccepted    bool     `json:"termsAccepted"`
	TermsText        string   `json:"termsText,omitempty"`
	CoverWideURL     string   `json:"coverWideUrl"`
	CoverPortraitURL string   `json:"coverPortraitUrl"`
}

type Schedule struct {
	Locations []Location `json:"locations"`
}

type Location struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Venues []Venue `json:"venues"`
}

type Venue struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Address string     `json:"address"`
	Dates   []ShowDate `json:"dates"`
}

type ShowDate struct {
	ID    string `json:"id"`
	Date  string `json:"date"`
	Shows []Show `json:"shows"`
}

type Show struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type TicketConfig struct {
	VenueConfigs []VenueTicketConfig `json:"venueConfigs"`
}

type VenueTicketConfig struct {
	VenueID     string       `json:"venueId"`
	TicketTypes []TicketType `json:"ticketTypes"`
}

// TicketType quantity is declared float64 so that fractional JSON input
// reaches the validator and yields a field error instead of a decode error.
type TicketType struct {
	ID            string  `json:"id"`
	TypeName      string  `json:"typeName"`
	Price         float64 `json:"price"`
	TotalQuantity float64 `json:"totalQuantity"`
}

// VenuesWithShows returns the ids of venues that have at least one show
// scheduled anywhere under them, in schedule order.
func (s Schedule) VenuesWithShows() []string {
	var out []string
	for _, location := range s.Locations {
		for _, venue := range location.Venues {
			for _, date := range venue.Dates {
				if len(date.Shows) > 0 {
					out = append(out, venue.ID)
					break
				}
			}
		}
	}
	return out
}

// ConfigFor returns the ticket config for a venue id, or nil.
func (t TicketConfig) ConfigFor(venueID string) *VenueTicketConfig {
	for i := range t.VenueConfigs {
		if t.VenueConfigs[i].VenueID == venueID {
			return &t.VenueConfigs[i]
		}
	}
	return nil
}

// NewEventID mints a sortable public event id.
func NewEventID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ValidateEventID checks that value is a well-formed event id.
func ValidateEventID(value string) error {
	if _, err := ulid.ParseStrict(value); err != nil {
		return ErrInvalidEventID
	}
	return nil
}
