package server

import (
	"missnotes/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateCollection handles POST /api/collections
func (s *Server) CreateCollection(c *fiber.Ctx) error {
	var req struct {
		Name    string `json:"name"`
		NoteIDs []uint `json:"noteIds"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	collection, err := s.collectionService.Create(c.Context(), currentUserID(c), req.Name, req.NoteIDs)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(collection)
}

// GetMyCollections handles GET /api/collections
func (s *Server) GetMyCollections(c *fiber.Ctx) error {
	collections, err := s.collectionService.ListOwn(c.Context(), currentUserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{"collections": collections})
}

// GetCollectionsSharedWithMe handles GET /api/collections/shared
func (s *Server) GetCollectionsSharedWithMe(c *fiber.Ctx) error {
	collections, err := s.collectionService.ListSharedWithMe(c.Context(), currentUserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{"collections": collections})
}

// GetCollectionsContainingNote handles GET /api/collections/note/:noteId
func (s *Server) GetCollectionsContainingNote(c *fiber.Ctx) error {
	noteID, err := s.parseID(c, "noteId")
	if err != nil {
		return nil
	}

	collections, err := s.collectionService.GetContaining(c.Context(), currentUserID(c), noteID)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{"collections": collections})
}

// GetCollection handles GET /api/collections/:id
func (s *Server) GetCollection(c *fiber.Ctx) error {
	collectionID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	collection, err := s.collectionService.Get(c.Context(), currentUserID(c), collectionID)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(collection)
}

// RenameCollection handles PATCH /api/collections/:id/name
func (s *Server) RenameCollection(c *fiber.Ctx) error {
	collectionID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	collection, err := s.collectionService.Rename(c.Context(), currentUserID(c), collectionID, req.Name)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(collection)
}

// UpdateCollectionFull handles PUT /api/collections/:id. Wholesale
// replacement of name, note list, and sharing list (owner only).
func (s *Server) UpdateCollectionFull(c *fiber.Ctx) error {
	collectionID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Name       string `json:"name"`
		NoteIDs    []uint `json:"noteIds"`
		SharedWith []uint `json:"sharedWith"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	collection, err := s.collectionService.UpdateFull(
		c.Context(), currentUserID(c), collectionID, req.Name, req.NoteIDs, req.SharedWith)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(collection)
}

// UpdateCollectionNotes handles PATCH /api/collections/:id/notes
func (s *Server) UpdateCollectionNotes(c *fiber.Ctx) error {
	collectionID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		NoteIDs []uint `json:"noteIds"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	collection, err := s.collectionService.UpdateNoteList(c.Context(), currentUserID(c), collectionID, req.NoteIDs)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(collection)
}

// ShareCollection handles POST /api/collections/:id/share
func (s *Server) ShareCollection(c *fiber.Ctx) error {
	collectionID, err := s.parseID(c, "id")
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

	collection, err := s.collectionService.Share(c.Context(), currentUserID(c), collectionID, req.FriendIDs)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(collection)
}

// UnshareCollection handles PATCH /api/collections/:id/unshare
func (s *Server) UnshareCollection(c *fiber.Ctx) error {
	collectionID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.collectionService.UnshareSelf(c.Context(), currentUserID(c), collectionID); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteCollection handles DELETE /api/collections/:id
func (s *Server) DeleteCollection(c *fiber.Ctx) error {
	collectionID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.collectionService.Delete(c.Context(), currentUserID(c), collectionID); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AdminGetCollections handles GET /api/admin/collections, optionally
// filtered by ?ownerId=N.
func (s *Server) AdminGetCollections(c *fiber.Ctx) error {
	ownerID := c.QueryInt("ownerId", 0)
	if ownerID < 0 {
		ownerID = 0
	}

	collections, err := s.collectionService.AdminList(c.Context(), uint(ownerID))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{"collections": collections})
}

// AdminGetCollection handles GET /api/admin/collections/:id
func (s *Server) AdminGetCollection(c *fiber.Ctx) error {
	collectionID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	collection, err := s.collectionRepo.GetByID(c.Context(), collectionID)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(collection)
}

// AdminCreateCollection handles POST /api/admin/collections
func (s *Server) AdminCreateCollection(c *fiber.Ctx) error {
	var req struct {
		OwnerID uint   `json:"ownerId"`
		Name    string `json:"name"`
		NoteIDs []uint `json:"noteIds"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.OwnerID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("ownerId is required"))
	}

	collection, err := s.collectionService.AdminCreate(c.Context(), req.OwnerID, req.Name, req.NoteIDs)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(collection)
}

// AdminUpdateCollection handles PUT /api/admin/collections/:id
func (s *Server) AdminUpdateCollection(c *fiber.Ctx) error {
	collectionID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Name       string `json:"name"`
		NoteIDs    []uint `json:"noteIds"`
		SharedWith []uint `json:"sharedWith"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	collection, err := s.collectionService.AdminUpdate(c.Context(), collectionID, req.Name, req.NoteIDs, req.SharedWith)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(collection)
}

// AdminAddNotesToCollection handles PUT /api/admin/collections/:id/notes/add
func (s *Server) AdminAddNotesToCollection(c *fiber.Ctx) error {
	collectionID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		NoteIDs []uint `json:"noteIds"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	collection, err := s.collectionService.AdminAddNotes(c.Context(), collectionID, req.NoteIDs)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(collection)
}

// AdminDeleteCollection handles DELETE /api/admin/collections/:id
func (s *Server) AdminDeleteCollection(c *fiber.Ctx) error {
	collectionID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.collectionService.AdminDelete(c.Context(), collectionID); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
