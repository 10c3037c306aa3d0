package venue

import (
	"net/http"
	"strings"
	"time"

	"github.com/courtside/venue-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "venue not found")
	ErrNameRequired    = apperror.New(http.StatusBadRequest, "venue name is required")
	ErrAddressRequired = apperror.New(http.StatusBadRequest, "venue address is required")
	ErrSportsRequired  = apperror.New(http.StatusBadRequest, "at least one sport is required")
)

// DefaultHourlyRate applies when a venue has no usable price range.
const DefaultHourlyRate = 500

// PriceRange is the min/max hourly price across a venue's courts.
// A zero value means the bound is not set.
type PriceRange struct {
	Min float64
	Max float64
}

// Venue is a bookable sports facility.
type Venue struct {
	ID          string // UUID
	OwnerID     string
	OwnerName   string
	Name        string
	Description string
	Address     string
	Sports      []string
	Photo       string // URL supplied by the owner
	IsApproved  bool
	PriceRange  PriceRange
	Amenities   []string
	Rating      float64
	ReviewCount int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HourlyRate derives the per-hour booking price from the venue price range:
// the average of min and max, min alone when max is unset, or the default
// rate when neither bound is set.
func (v *Venue) HourlyRate() float64 {
	switch {
	case v.PriceRange.Min > 0 && v.PriceRange.Max > 0:
		return (v.PriceRange.Min + v.PriceRange.Max) / 2
	case v.PriceRange.Min > 0:
		return v.PriceRange.Min
	default:
		return DefaultHourlyRate
	}
}

// OffersSport reports whether the venue offers the given sport,
// matching case-insensitively and ignoring surrounding whitespace.
func (v *Venue) OffersSport(sport string) bool {
	want := strings.TrimSpace(sport)
	for _, s := range v.Sports {
		if strings.EqualFold(strings.TrimSpace(s), want) {
			return true
		}
	}
	return false
}

// Filter defines parameters for listing venues.
type Filter struct {
	Sport    string
	Search   string
	Page     int
	PageSize int
}
