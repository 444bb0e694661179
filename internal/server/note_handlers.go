package server

import (
	"missnotes/internal/models"

	"github.com/gofiber/fiber/v2"
)

type noteRequest struct {
	Title   string                `json:"title"`
	Content []models.ContentBlock `json:"content"`
}

// CreateNote handles POST /api/notes
func (s *Server) CreateNote(c *fiber.Ctx) error {
	var req noteRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	note, err := s.noteService.Create(c.Context(), currentUserID(c), req.Title, req.Content)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

// GetMyNotes handles GET /api/notes
func (s *Server) GetMyNotes(c *fiber.Ctx) error {
	notes, err := s.noteService.ListOwn(c.Context(), currentUserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{"notes": notes})
}

// GetNotesSharedWithMe handles GET /api/notes/shared
func (s *Server) GetNotesSharedWithMe(c *fiber.Ctx) error {
	notes, err := s.noteService.ListSharedWithMe(c.Context(), currentUserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{"notes": notes})
}

// GetNote handles GET /api/notes/:id
func (s *Server) GetNote(c *fiber.Ctx) error {
	noteID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	note, err := s.noteService.Get(c.Context(), currentUserID(c), noteID)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(note)
}

// UpdateNote handles PUT /api/notes/:id. Replaces title and content;
// the sharing list is managed through its own endpoints.
func (s *Server) UpdateNote(c *fiber.Ctx) error {
	noteID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req noteRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	note, err := s.noteService.UpdateContent(c.Context(), currentUserID(c), noteID, req.Title, req.Content)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(note)
}

// UpdateNoteSharedWith handles PATCH /api/notes/:id/shared-with
func (s *Server) UpdateNoteSharedWith(c *fiber.Ctx) error {
	noteID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		UserIDs []uint `json:"userIds"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	note, err := s.noteService.UpdateSharedWith(c.Context(), currentUserID(c), noteID, req.UserIDs)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(note)
}

// ShareNote handles POST /api/notes/:id/share
func (s *Server) ShareNote(c *fiber.Ctx) error {
	noteID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		FriendIDs []uint `json:"friendIds"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	note, err := s.noteService.Share(c.Context(), currentUserID(c), noteID, req.FriendIDs)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(note)
}

// UnshareNote handles PATCH /api/notes/:id/unshare. Removes the caller
// from the note's sharing list.
func (s *Server) UnshareNote(c *fiber.Ctx) error {
	noteID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.noteService.UnshareSelf(c.Context(), currentUserID(c), noteID); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteNote handles DELETE /api/notes/:id
func (s *Server) DeleteNote(c *fiber.Ctx) error {
	noteID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.noteService.Delete(c.Context(), currentUserID(c), noteID); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AdminGetNotes handles GET /api/admin/notes, optionally filtered by
// ?ownerId=N.
func (s *Server) AdminGetNotes(c *fiber.Ctx) error {
	ownerID := c.QueryInt("ownerId", 0)
	if ownerID < 0 {
		ownerID = 0
	}

	notes, err := s.noteService.AdminList(c.Context(), uint(ownerID))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{"notes": notes})
}

// AdminCreateNote handles POST /api/admin/notes
func (s *Server) AdminCreateNote(c *fiber.Ctx) error {
	var req struct {
		OwnerID uint                  `json:"ownerId"`
		Title   string                `json:"title"`
		Content []models.ContentBlock `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.OwnerID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("ownerId is required"))
	}

	note, err := s.noteService.AdminCreate(c.Context(), req.OwnerID, req.Title, req.Content)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

// AdminUpdateNote handles PUT /api/admin/notes/:id
func (s *Server) AdminUpdateNote(c *fiber.Ctx) error {
	noteID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req noteRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	note, err := s.noteService.AdminUpdate(c.Context(), noteID, req.Title, req.Content)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(note)
}

// AdminDeleteNote handles DELETE /api/admin/notes/:id
func (s *Server) AdminDeleteNote(c *fiber.Ctx) error {
	noteID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.noteService.AdminDelete(c.Context(), noteID); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
