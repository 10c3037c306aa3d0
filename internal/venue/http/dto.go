package http

import (
	"time"

	"github.com/courtside/venue-booking-backend/internal/pkg/request"
	"github.com/courtside/venue-booking-backend/internal/venue"
)

// VenueTag is the minimal venue reference embedded in other responses.
type VenueTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ListVenuesRequest struct {
	request.ListParams
	Sport  string `form:"sport"`
	Search string `form:"search"`
}

type PriceRangeBody struct {
	Min float64 `json:"min" binding:"min=0"`
	Max float64 `json:"max" binding:"min=0"`
}

type CreateVenueRequest struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Address     string         `json:"address" binding:"required"`
	Sports      []string       `json:"sports" binding:"required,min=1"`
	Photo       string         `json:"photo" binding:"omitempty,url"`
	PriceRange  PriceRangeBody `json:"price_range"`
	Amenities   []string       `json:"amenities"`
}

type VenueResponse struct {
	ID          string         `json:"id"`
	Owner       UserTag        `json:"owner"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Address     string         `json:"address"`
	Sports      []string       `json:"sports"`
	Photo       string         `json:"photo"`
	IsApproved  bool           `json:"is_approved"`
	PriceRange  PriceRangeBody `json:"price_range"`
	HourlyRate  float64        `json:"hourly_rate"`
	Amenities   []string       `json:"amenities"`
	Rating      float64        `json:"rating"`
	ReviewCount int            `json:"review_count"`
	CreatedAt   time.Time      `json:"created_at"`
}

// UserTag mirrors the user module's tag to avoid a cross-module HTTP import.
type UserTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NewVenueResponse(v *venue.Venue) VenueResponse {
	return VenueResponse{
		ID:          v.ID,
		Owner:       UserTag{ID: v.OwnerID, Name: v.OwnerName},
		Name:        v.Name,
		Description: v.Description,
		Address:     v.Address,
		Sports:      v.Sports,
		Photo:       v.Photo,
		IsApproved:  v.IsApproved,
		PriceRange:  PriceRangeBody{Min: v.PriceRange.Min, Max: v.PriceRange.Max},
		HourlyRate:  v.HourlyRate(),
		Amenities:   v.Amenities,
		Rating:      v.Rating,
		ReviewCount: v.ReviewCount,
		CreatedAt:   v.CreatedAt,
	}
}
