package venue

import (
	"context"
	"strings"
)

type CreateRequest struct {
	OwnerID     string
	Name        string
	Description string
	Address     string
	Sports      []string
	Photo       string
	PriceRange  PriceRange
	Amenities   []string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Venue, error)
	GetByID(ctx context.Context, id string) (*Venue, error)
	List(ctx context.Context, filter Filter) ([]*Venue, int, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Venue, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(req.Address) == "" {
		return nil, ErrAddressRequired
	}

	sports := make([]string, 0, len(req.Sports))
	for _, sp := range req.Sports {
		if trimmed := strings.TrimSpace(sp); trimmed != "" {
			sports = append(sports, trimmed)
		}
	}
	if len(sports) == 0 {
		return nil, ErrSportsRequired
	}

	amenities := req.Amenities
	if amenities == nil {
		amenities = []string{}
	}

	v := &Venue{
		OwnerID:     req.OwnerID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Address:     strings.TrimSpace(req.Address),
		Sports:      sports,
		Photo:       req.Photo,
		PriceRange:  req.PriceRange,
		Amenities:   amenities,
	}

	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Venue, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Venue, int, error) {
	return s.repo.List(ctx, filter)
}
