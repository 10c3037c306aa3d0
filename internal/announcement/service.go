package announcement

import (
	"context"
	"strings"

	"github.com/courtside/venue-booking-backend/internal/realtime"
)

type Service interface {
	// Create stores the announcement and pushes it to every connected client.
	Create(ctx context.Context, title, content string) (*Announcement, error)
	GetByID(ctx context.Context, id string) (*Announcement, error)
	List(ctx context.Context, page, pageSize int) ([]*Announcement, int, error)
}

type service struct {
	repo        Repository
	broadcaster realtime.Broadcaster
}

func NewService(repo Repository, broadcaster realtime.Broadcaster) Service {
	return &service{repo: repo, broadcaster: broadcaster}
}

func (s *service) Create(ctx context.Context, title, content string) (*Announcement, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if content == "" {
		return nil, ErrContentRequired
	}

	a := &Announcement{Title: title, Content: content}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.broadcaster.Announce(map[string]any{
		"id":         a.ID,
		"title":      a.Title,
		"content":    a.Content,
		"created_at": a.CreatedAt,
	})
	return a, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Announcement, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, page, pageSize int) ([]*Announcement, int, error) {
	return s.repo.List(ctx, page, pageSize)
}
