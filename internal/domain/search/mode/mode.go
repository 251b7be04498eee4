package mode

// Mode is the recommendation query mode.
type Mode string

// Query mode constants.
const (
	// Text ranks destinations against a free-text query.
	Text Mode = "text"
	// Similar ranks destinations against another destination.
	Similar Mode = "similar"
	// Detail is a single destination with its similar list.
	Detail Mode = "detail"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Text || m == Similar || m == Detail
}
