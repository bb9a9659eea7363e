package domain

import "time"

// Property type constants.
const (
	PropertyTypeApartment = "apartment"
	PropertyTypeHouse     = "house"
	PropertyTypeVilla     = "villa"
	PropertyTypeCondo     = "condo"
	PropertyTypeCabin     = "cabin"
	PropertyTypeHotel     = "hotel"
)

// Listing represents a bookable property owned by a host. HostID is set at
// creation and never changes.
type Listing struct {
	ID            string    `json:"id"`
	HostID        string    `json:"host_id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description,omitempty"`
	PropertyType  string    `json:"property_type"`
	PricePerNight int64     `json:"price_per_night"`
	Currency      string    `json:"currency"`
	MaxGuests     int       `json:"max_guests"`
	Bedrooms      int       `json:"bedrooms"`
	Beds          int       `json:"beds"`
	Bathrooms     int       `json:"bathrooms"`
	Address       string    `json:"address,omitempty"`
	City          string    `json:"city"`
	Country       string    `json:"country"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	Amenities     []string  `json:"amenities"`
	IsAvailable   bool      `json:"is_available"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ValidPropertyTypes returns all valid property types.
func ValidPropertyTypes() []string {
	return []string{
		PropertyTypeApartment,
		PropertyTypeHouse,
		PropertyTypeVilla,
		PropertyTypeCondo,
		PropertyTypeCabin,
		PropertyTypeHotel,
	}
}

// IsValidPropertyType checks if a property type string is valid.
func IsValidPropertyType(t string) bool {
	for _, v := range ValidPropertyTypes() {
		if v == t {
			return true
		}
	}
	return false
}
