// Package service contains business logic sitting between handlers and repositories.
package service

import (
	"context"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// EntryService owns validation and orchestration for journal entries. All
// operations take the owner's user ID supplied by the auth middleware; the
// service never resolves identity itself.
type EntryService struct {
	entryRepo repository.EntryRepository
}

// CreateEntryInput is the payload for creating an entry. The three text
// fields default to empty strings; an empty string is a valid value and is
// stored as-is.
type CreateEntryInput struct {
	UserID    uint
	Date      string
	Gratitude string
	Feeling   string
	OnMind    string
}

// UpdateEntryInput is the payload for a full replace of an entry's text
// fields. Date and creation time are immutable and deliberately absent.
type UpdateEntryInput struct {
	UserID    uint
	EntryID   uint
	Gratitude string
	Feeling   string
	OnMind    string
}

// NewEntryService creates a new EntryService.
func NewEntryService(entryRepo repository.EntryRepository) *EntryService {
	return &EntryService{entryRepo: entryRepo}
}

// CreateEntry inserts a new entry. It never merges with an existing same-day
// entry; a user writing twice on one date ends up with two rows.
func (s *EntryService) CreateEntry(ctx context.Context, in CreateEntryInput) (*models.Entry, error) {
	if in.Date == "" {
		return nil, models.NewValidationError("Date is required")
	}

	entry := &models.Entry{
		UserID:    in.UserID,
		Date:      in.Date,
		Gratitude: in.Gratitude,
		Feeling:   in.Feeling,
		OnMind:    in.OnMind,
	}
	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	middleware.EntriesCreated.Inc()
	return entry, nil
}

// GetEntry returns the entry, or nil when it does not exist or belongs to a
// different user.
func (s *EntryService) GetEntry(ctx context.Context, userID, id uint) (*models.Entry, error) {
	return s.entryRepo.GetByID(ctx, userID, id)
}

// GetEntriesByDate returns the user's entries for one day, oldest first.
func (s *EntryService) GetEntriesByDate(ctx context.Context, userID uint, date string) ([]models.Entry, error) {
	return s.entryRepo.ListByDate(ctx, userID, date)
}

// UpdateEntry replaces the entry's three text fields. Returns nil when no
// entry matches the scoped ID; the caller must surface that as not-found.
func (s *EntryService) UpdateEntry(ctx context.Context, in UpdateEntryInput) (*models.Entry, error) {
	return s.entryRepo.Update(ctx, in.UserID, in.EntryID, in.Gratitude, in.Feeling, in.OnMind)
}

// DeleteEntry removes the entry and reports whether anything was deleted.
func (s *EntryService) DeleteEntry(ctx context.Context, userID, id uint) (bool, error) {
	deleted, err := s.entryRepo.Delete(ctx, userID, id)
	if err != nil {
		return false, err
	}
	if deleted {
		middleware.EntriesDeleted.Inc()
	}
	return deleted, nil
}

// GetTimeline returns the distinct dates carrying entries, newest first, with
// per-date counts.
func (s *EntryService) GetTimeline(ctx context.Context, userID uint) ([]models.DateSummary, error) {
	return s.entryRepo.ListDates(ctx, userID)
}
