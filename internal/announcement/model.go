package announcement

import (
	"net/http"
	"time"

	"github.com/courtside/venue-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "announcement not found")
	ErrTitleRequired   = apperror.New(http.StatusBadRequest, "announcement title is required")
	ErrContentRequired = apperror.New(http.StatusBadRequest, "announcement content is required")
)

// Announcement is a platform-wide notice pushed to every connected client
// and kept for later retrieval.
type Announcement struct {
	ID        string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
