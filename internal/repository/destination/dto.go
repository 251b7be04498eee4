package destination

import (
	"strconv"

	domdest "github.com/kailas-cloud/wisata/internal/domain/destination"
)

// Hash field names of a stored destination.
const (
	fieldName         = "name"
	fieldCategory     = "category"
	fieldDescription  = "description"
	fieldFacilities   = "facilities"
	fieldRating       = "rating"
	fieldReviewCount  = "review_count"
	fieldImage        = "image"
	fieldAddress      = "address"
	fieldCoordinates  = "coordinates"
	fieldOpeningHours = "opening_hours"
	fieldTicketInfo   = "ticket_info"
)

// buildHashFields flattens a destination for HSET.
func buildHashFields(d *domdest.Destination) map[string]string {
	a := d.Attributes()
	return map[string]string{
		fieldName:         a.Name,
		fieldCategory:     a.Category,
		fieldDescription:  a.Description,
		fieldFacilities:   a.Facilities,
		fieldRating:       strconv.FormatFloat(a.Rating, 'f', -1, 64),
		fieldReviewCount:  strconv.Itoa(a.ReviewCount),
		fieldImage:        a.Image,
		fieldAddress:      a.Address,
		fieldCoordinates:  a.Coordinates,
		fieldOpeningHours: a.OpeningHours,
		fieldTicketInfo:   a.TicketInfo,
	}
}

// parseHashFields rebuilds a destination from a hash. Unparseable numbers read as 0.
func parseHashFields(id string, m map[string]string) domdest.Destination {
	rating, _ := strconv.ParseFloat(m[fieldRating], 64)
	reviews, _ := strconv.Atoi(m[fieldReviewCount])
	return domdest.Reconstruct(id, domdest.Attributes{
		Name:         m[fieldName],
		Category:     m[fieldCategory],
		Description:  m[fieldDescription],
		Facilities:   m[fieldFacilities],
		Rating:       rating,
		ReviewCount:  reviews,
		Image:        m[fieldImage],
		Address:      m[fieldAddress],
		Coordinates:  m[fieldCoordinates],
		OpeningHours: m[fieldOpeningHours],
		TicketInfo:   m[fieldTicketInfo],
	})
}
