package destination

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kailas-cloud/wisata/internal/domain/geo"
)

// Attributes holds the descriptive fields of a destination record.
// Empty strings stand for absent values.
type Attributes struct {
	Name         string
	Category     string
	Description  string
	Facilities   string
	Rating       float64
	ReviewCount  int
	Image        string
	Address      string
	Coordinates  string // "lat,long" as stored
	OpeningHours string
	TicketInfo   string
}

// Destination is a tourism destination record (read-only value object).
type Destination struct {
	id    string
	attrs Attributes
}

// New validates and creates a Destination.
// ID must be a UUID; name is required.
func New(id string, attrs Attributes) (Destination, error) {
	if err := ValidateID(id); err != nil {
		return Destination{}, err
	}
	if attrs.Name == "" {
		return Destination{}, fmt.Errorf("destination name is required")
	}
	if attrs.Rating < 0 {
		return Destination{}, fmt.Errorf("rating must not be negative")
	}
	if attrs.ReviewCount < 0 {
		return Destination{}, fmt.Errorf("review count must not be negative")
	}
	return Destination{id: id, attrs: attrs}, nil
}

// Reconstruct creates a Destination without validation (storage hydration).
func Reconstruct(id string, attrs Attributes) Destination {
	return Destination{id: id, attrs: attrs}
}

// ValidateID checks that id is a canonical UUID string.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("destination ID is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("destination ID must be a UUID: %w", err)
	}
	return nil
}

// ID returns the stable destination identifier.
func (d *Destination) ID() string { return d.id }

// Name returns the display name.
func (d *Destination) Name() string { return d.attrs.Name }

// Category returns the category name ("" when uncategorized).
func (d *Destination) Category() string { return d.attrs.Category }

// Description returns the free-text description.
func (d *Destination) Description() string { return d.attrs.Description }

// Facilities returns the free-text facilities list.
func (d *Destination) Facilities() string { return d.attrs.Facilities }

// Rating returns the numeric rating (0 when unrated).
func (d *Destination) Rating() float64 { return d.attrs.Rating }

// ReviewCount returns the number of reviews.
func (d *Destination) ReviewCount() int { return d.attrs.ReviewCount }

// Image returns the image reference.
func (d *Destination) Image() string { return d.attrs.Image }

// Address returns the street address.
func (d *Destination) Address() string { return d.attrs.Address }

// Coordinates returns the raw coordinates text.
func (d *Destination) Coordinates() string { return d.attrs.Coordinates }

// OpeningHours returns the opening hours text.
func (d *Destination) OpeningHours() string { return d.attrs.OpeningHours }

// TicketInfo returns the ticket pricing text.
func (d *Destination) TicketInfo() string { return d.attrs.TicketInfo }

// Attributes returns a copy of all descriptive fields.
func (d *Destination) Attributes() Attributes { return d.attrs }

// LatLong parses the stored coordinates. ok is false when absent or malformed.
func (d *Destination) LatLong() (lat, lon float64, ok bool) {
	return geo.ParseCoordinates(d.attrs.Coordinates)
}

// TextFields returns the fields that make up the recommendation document,
// in corpus order: category, name, description, facilities.
func (d *Destination) TextFields() [4]string {
	return [4]string{d.attrs.Category, d.attrs.Name, d.attrs.Description, d.attrs.Facilities}
}
