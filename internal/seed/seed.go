// Package seed provides helpers to create demo data for the journal
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options controls how much demo data is generated.
type Options struct {
	Users            int
	DaysBack         int
	MaxEntriesPerDay int
	Password         string
}

// DefaultOptions returns a small but realistic demo set.
func DefaultOptions() Options {
	return Options{
		Users:            3,
		DaysBack:         45,
		MaxEntriesPerDay: 3,
		Password:         "demo-password",
	}
}

// Run populates the database with demo users and journal entries. Some days
// intentionally carry several entries so the timeline shows real counts.
func Run(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	hashed, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	for i := 0; i < opts.Users; i++ {
		user := &models.User{
			Username:     fmt.Sprintf("%s%d", gofakeit.Username(), r.Intn(1000)),
			PasswordHash: string(hashed),
		}
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create demo user: %w", err)
		}

		entries := 0
		for day := 0; day < opts.DaysBack; day++ {
			// Journals have gaps; skip roughly a third of the days.
			if r.Intn(3) == 0 {
				continue
			}
			date := time.Now().AddDate(0, 0, -day).Format("2006-01-02")
			perDay := 1 + r.Intn(opts.MaxEntriesPerDay)
			for n := 0; n < perDay; n++ {
				entry := &models.Entry{
					UserID:    user.ID,
					Date:      date,
					Gratitude: gofakeit.Sentence(8),
					Feeling:   gofakeit.AdjectiveDescriptive(),
					OnMind:    gofakeit.Paragraph(1, 2, 6, " "),
				}
				if err := db.Create(entry).Error; err != nil {
					return fmt.Errorf("failed to create demo entry: %w", err)
				}
				entries++
			}
		}
		log.Printf("seeded user %s with %d entries", user.Username, entries)
	}
	return nil
}
