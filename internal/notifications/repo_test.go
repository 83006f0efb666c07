package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/enlacehub/enlacehub-backend/pkg/db/models"
	"github.com/enlacehub/enlacehub-backend/pkg/enums"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:notifications_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  action_url TEXT,
  is_read INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec(`DELETE FROM notifications`).Error)
	return db
}

func seedNotification(t *testing.T, db *gorm.DB, userID uuid.UUID, createdAt time.Time, read bool) *models.Notification {
	t.Helper()
	n := &models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      enums.NotificationTypeInfo,
		Title:     "title",
		Message:   "message",
		IsRead:    read,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(n).Error)
	return n
}

func TestRepositoryListPaginates(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		seedNotification(t, db, userID, base.Add(time.Duration(i)*time.Minute), false)
	}
	seedNotification(t, db, uuid.New(), base, false) // other user, must be filtered out

	rows, next, err := repo.List(context.Background(), listNotificationsParams{UserID: userID, Limit: 3})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.NotNil(t, next)

	// newest first
	assert.True(t, rows[0].CreatedAt.After(rows[1].CreatedAt))

	rest, next2, err := repo.List(context.Background(), listNotificationsParams{UserID: userID, Limit: 3, Cursor: next})
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Nil(t, next2)
}

func TestRepositoryMarkReadAndMarkAllRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()
	now := time.Now().UTC()

	n1 := seedNotification(t, db, userID, now, false)
	seedNotification(t, db, userID, now.Add(time.Second), false)

	res, err := repo.MarkRead(context.Background(), userID, n1.ID)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.True(t, res.Updated)

	// second mark is found but not updated
	res, err = repo.MarkRead(context.Background(), userID, n1.ID)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.False(t, res.Updated)

	// unknown id
	res, err = repo.MarkRead(context.Background(), userID, uuid.New())
	require.NoError(t, err)
	assert.False(t, res.Found)

	count, err := repo.MarkAllRead(context.Background(), userID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestRepositoryDeleteScopedToUser(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	owner := uuid.New()
	other := uuid.New()
	n := seedNotification(t, db, owner, time.Now().UTC(), false)

	deleted, err := repo.Delete(context.Background(), other, n.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = repo.Delete(context.Background(), owner, n.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestRepositoryDeleteOlderThan(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()
	now := time.Now().UTC()

	seedNotification(t, db, userID, now.Add(-40*24*time.Hour), true)
	seedNotification(t, db, userID, now.Add(-10*24*time.Hour), false)

	count, err := repo.DeleteOlderThan(context.Background(), now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	var remaining int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&remaining).Error)
	assert.EqualValues(t, 1, remaining)
}
