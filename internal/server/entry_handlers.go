package server

import (
	"errors"

	"inkwell/internal/models"
	"inkwell/internal/service"
	"inkwell/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type entryBody struct {
	Date      string `json:"date"`
	Gratitude string `json:"gratitude"`
	Feeling   string `json:"feeling"`
	OnMind    string `json:"on_mind"`
}

// GetEntriesByDate handles GET /api/entries/:date
func (s *Server) GetEntriesByDate(c *fiber.Ctx) error {
	date := c.Params("date")
	if err := validation.ValidateDate(date); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	entries, err := s.entryService.GetEntriesByDate(c.UserContext(), s.currentUserID(c), date)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(entries)
}

// GetEntry handles GET /api/entry/:id
func (s *Server) GetEntry(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	entry, err := s.entryService.GetEntry(c.UserContext(), s.currentUserID(c), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if entry == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Entry", id))
	}
	return c.JSON(entry)
}

// CreateEntry handles POST /api/entry
func (s *Server) CreateEntry(c *fiber.Ctx) error {
	var req entryBody
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := validation.ValidateDate(req.Date); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	entry, err := s.entryService.CreateEntry(c.UserContext(), service.CreateEntryInput{
		UserID:    s.currentUserID(c),
		Date:      req.Date,
		Gratitude: req.Gratitude,
		Feeling:   req.Feeling,
		OnMind:    req.OnMind,
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "VALIDATION_ERROR" {
			return models.RespondWithError(c, fiber.StatusBadRequest, appErr)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(entry)
}

// UpdateEntry handles PUT /api/entry/:id
func (s *Server) UpdateEntry(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req entryBody
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	entry, err := s.entryService.UpdateEntry(c.UserContext(), service.UpdateEntryInput{
		UserID:    s.currentUserID(c),
		EntryID:   id,
		Gratitude: req.Gratitude,
		Feeling:   req.Feeling,
		OnMind:    req.OnMind,
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if entry == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Entry", id))
	}
	return c.JSON(entry)
}

// DeleteEntry handles DELETE /api/entry/:id
func (s *Server) DeleteEntry(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	deleted, err := s.entryService.DeleteEntry(c.UserContext(), s.currentUserID(c), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if !deleted {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Entry", id))
	}
	return c.JSON(fiber.Map{"success": true})
}

// GetTimeline handles GET /api/entries
func (s *Server) GetTimeline(c *fiber.Ctx) error {
	summaries, err := s.entryService.GetTimeline(c.UserContext(), s.currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(summaries)
}
