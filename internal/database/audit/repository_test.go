package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookstore/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func TestRepository_LogEvent(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	event := &entities.AuditEvent{
		UserID:      1,
		EventType:   entities.AuditEventBook,
		Action:      "book_create",
		Description: "Created book \"Dune\"",
		Status:      entities.AuditStatusSuccess,
	}

	err := repo.LogEvent(context.Background(), event)
	require.NoError(t, err)
	assert.NotZero(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestRepository_Events(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		event := &entities.AuditEvent{
			UserID:    1,
			EventType: entities.AuditEventBook,
			Action:    "book_update",
			Status:    entities.AuditStatusSuccess,
			CreatedAt: time.Now().Add(time.Duration(-i) * time.Hour),
		}
		require.NoError(t, repo.LogEvent(ctx, event))
	}

	for i := 0; i < 5; i++ {
		event := &entities.AuditEvent{
			UserID:    2,
			EventType: entities.AuditEventRelation,
			Action:    "relation_update",
			Status:    entities.AuditStatusSuccess,
		}
		require.NoError(t, repo.LogEvent(ctx, event))
	}

	t.Run("get all events", func(t *testing.T) {
		events, total, err := repo.Events(ctx, Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(20), total)
		assert.Len(t, events, 20)
	})

	t.Run("get user events", func(t *testing.T) {
		events, total, err := repo.Events(ctx, Filter{UserID: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)
		assert.Len(t, events, 15)
	})

	t.Run("filter by type", func(t *testing.T) {
		events, total, err := repo.Events(ctx, Filter{EventType: entities.AuditEventRelation})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		for _, e := range events {
			assert.Equal(t, entities.AuditEventRelation, e.EventType)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		events, total, err := repo.Events(ctx, Filter{UserID: 1, Limit: 5})
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)
		assert.Len(t, events, 5)

		events2, _, err := repo.Events(ctx, Filter{UserID: 1, Limit: 5, Offset: 5})
		require.NoError(t, err)
		assert.Len(t, events2, 5)
		assert.NotEqual(t, events[0].ID, events2[0].ID)
	})

	t.Run("order by created_at desc", func(t *testing.T) {
		events, _, err := repo.Events(ctx, Filter{UserID: 1, Limit: 10})
		require.NoError(t, err)
		for i := 1; i < len(events); i++ {
			assert.False(t, events[i].CreatedAt.After(events[i-1].CreatedAt))
		}
	})
}

func TestRepository_DeleteOldEvents(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	now := time.Now()

	require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventBook,
		Action:    "old_delete",
		Status:    entities.AuditStatusSuccess,
		CreatedAt: now.Add(-48 * time.Hour),
	}))
	require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventBook,
		Action:    "new_delete",
		Status:    entities.AuditStatusSuccess,
		CreatedAt: now.Add(-1 * time.Hour),
	}))

	deleted, err := repo.DeleteOldEvents(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	events, total, err := repo.Events(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, events, 1)
	assert.Equal(t, "new_delete", events[0].Action)
}
