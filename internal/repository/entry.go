// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// EntryRepository defines persistence operations for journal entries. Every
// method is scoped by the owner's user ID; a row owned by someone else is
// reported exactly like a row that does not exist. Absence is a nil result,
// never an error — callers decide how to surface it.
type EntryRepository interface {
	Create(ctx context.Context, entry *models.Entry) error
	GetByID(ctx context.Context, userID, id uint) (*models.Entry, error)
	ListByDate(ctx context.Context, userID uint, date string) ([]models.Entry, error)
	Update(ctx context.Context, userID, id uint, gratitude, feeling, onMind string) (*models.Entry, error)
	Delete(ctx context.Context, userID, id uint) (bool, error)
	ListDates(ctx context.Context, userID uint) ([]models.DateSummary, error)
}

type entryRepository struct {
	db *gorm.DB
}

// NewEntryRepository returns a new EntryRepository implementation.
func NewEntryRepository(db *gorm.DB) EntryRepository {
	return &entryRepository{db: db}
}

// Create always inserts a new row. Two entries for the same (user, date) pair
// are expected and never merged.
func (r *entryRepository) Create(ctx context.Context, entry *models.Entry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateTimeline(ctx, entry.UserID)
	return nil
}

func (r *entryRepository) GetByID(ctx context.Context, userID, id uint) (*models.Entry, error) {
	var entry models.Entry
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Nonexistent and foreign-owned are indistinguishable here.
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &entry, nil
}

// ListByDate returns the user's entries for one day in the order they were
// written, oldest first.
func (r *entryRepository) ListByDate(ctx context.Context, userID uint, date string) ([]models.Entry, error) {
	entries := []models.Entry{}
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("created_at ASC").
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

// Update replaces the three text fields of the row matching (id, user_id) in
// a single UPDATE statement; concurrent updates resolve last-write-wins. The
// date and created_at columns are never touched. Returns nil when no row
// matched.
func (r *entryRepository) Update(ctx context.Context, userID, id uint, gratitude, feeling, onMind string) (*models.Entry, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Entry{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"gratitude":  gratitude,
			"feeling":    feeling,
			"on_mind":    onMind,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, userID, id)
}

// Delete removes the row matching (id, user_id) and reports whether a row was
// actually removed. Deletion is permanent; entries have no soft-delete.
func (r *entryRepository) Delete(ctx context.Context, userID, id uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Entry{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	cache.InvalidateTimeline(ctx, userID)
	return true, nil
}

// ListDates returns the distinct dates holding at least one entry, newest
// date first, with per-date counts. The timeline renderer depends on both the
// distinctness and the ordering.
func (r *entryRepository) ListDates(ctx context.Context, userID uint) ([]models.DateSummary, error) {
	summaries := []models.DateSummary{}
	err := cache.Aside(ctx, cache.TimelineKey(userID), &summaries, cache.TimelineTTL, func() error {
		return r.db.WithContext(ctx).
			Model(&models.Entry{}).
			Select("date, COUNT(*) AS entry_count").
			Where("user_id = ?", userID).
			Group("date").
			Order("date DESC").
			Scan(&summaries).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return summaries, nil
}
