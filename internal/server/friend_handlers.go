package server

import (
	"missnotes/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFriends handles GET /api/friends
func (s *Server) GetFriends(c *fiber.Ctx) error {
	friends, err := s.friendService.ListFriends(c.Context(), currentUserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{"friends": friends})
}

// SendFriendRequest handles POST /api/friends/requests/:userId
func (s *Server) SendFriendRequest(c *fiber.Ctx) error {
	receiverID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	friendship, err := s.friendService.Request(c.Context(), currentUserID(c), receiverID)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(friendship)
}

// GetPendingRequests handles GET /api/friends/requests
func (s *Server) GetPendingRequests(c *fiber.Ctx) error {
	requests, err := s.friendService.ListIncomingPending(c.Context(), currentUserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{"requests": requests})
}

// GetSentRequests handles GET /api/friends/requests/sent
func (s *Server) GetSentRequests(c *fiber.Ctx) error {
	requests, err := s.friendService.ListOutgoingPending(c.Context(), currentUserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{"requests": requests})
}

// AcceptFriendRequest handles POST /api/friends/requests/:requestId/accept
func (s *Server) AcceptFriendRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}

	friendship, err := s.friendService.Respond(c.Context(), currentUserID(c), requestID, true)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(friendship)
}

// RejectFriendRequest handles POST /api/friends/requests/:requestId/reject
func (s *Server) RejectFriendRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}

	friendship, err := s.friendService.Respond(c.Context(), currentUserID(c), requestID, false)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(friendship)
}

// RevokeFriendRequest handles DELETE /api/friends/requests/:requestId
func (s *Server) RevokeFriendRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}

	if err := s.friendService.Revoke(c.Context(), currentUserID(c), requestID); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFriendshipStatus handles GET /api/friends/status/:userId
func (s *Server) GetFriendshipStatus(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	status, requestID, err := s.friendService.Status(c.Context(), currentUserID(c), targetID)
	if err != nil {
		return models.Respond(c, err)
	}

	resp := fiber.Map{"status": status}
	if requestID != 0 {
		resp["request_id"] = requestID
	}
	return c.JSON(resp)
}

// RemoveFriend handles DELETE /api/friends/:userId
func (s *Server) RemoveFriend(c *fiber.Ctx) error {
	otherUserID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.friendService.DissolveWith(c.Context(), currentUserID(c), otherUserID); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
