package backups

import (
	"time"

	"github.com/google/uuid"

	"github.com/enlacehub/enlacehub-backend/pkg/db/models"
)

const snapshotVersion = "1.0"

// Snapshot is the serialized backup payload stored in backup_data.
type Snapshot struct {
	Version   string          `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	Profile   ProfileSnapshot `json:"profile"`
	Links     []LinkSnapshot  `json:"links"`
	Analytics []ViewSnapshot  `json:"analytics"`
}

type ProfileSnapshot struct {
	Username  string  `json:"username"`
	FullName  string  `json:"full_name"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	Theme     string  `json:"theme"`
}

type LinkSnapshot struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Position   int    `json:"position"`
	IsActive   bool   `json:"is_active"`
	ClickCount int64  `json:"click_count"`
}

type ViewSnapshot struct {
	Referrer *string   `json:"referrer,omitempty"`
	ViewedAt time.Time `json:"viewed_at"`
}

func buildSnapshot(user *models.User, links []models.Link, views []models.ProfileView, now time.Time) Snapshot {
	snap := Snapshot{
		Version:   snapshotVersion,
		CreatedAt: now,
		Profile: ProfileSnapshot{
			Username:  user.Username,
			FullName:  user.FullName,
			AvatarURL: user.AvatarURL,
			Bio:       user.Bio,
			Theme:     user.Theme,
		},
		Links:     make([]LinkSnapshot, 0, len(links)),
		Analytics: make([]ViewSnapshot, 0, len(views)),
	}
	for _, link := range links {
		snap.Links = append(snap.Links, LinkSnapshot{
			Title:      link.Title,
			URL:        link.URL,
			Position:   link.Position,
			IsActive:   link.IsActive,
			ClickCount: link.ClickCount,
		})
	}
	for _, view := range views {
		snap.Analytics = append(snap.Analytics, ViewSnapshot{
			Referrer: view.Referrer,
			ViewedAt: view.ViewedAt,
		})
	}
	return snap
}

// restoreLinks rebuilds link rows from a snapshot for ReplaceForUser.
func (s Snapshot) restoreLinks(userID uuid.UUID) []models.Link {
	links := make([]models.Link, 0, len(s.Links))
	for _, snap := range s.Links {
		links = append(links, models.Link{
			ID:         uuid.New(),
			UserID:     userID,
			Title:      snap.Title,
			URL:        snap.URL,
			Position:   snap.Position,
			IsActive:   snap.IsActive,
			ClickCount: snap.ClickCount,
		})
	}
	return links
}
