package handler

import (
	"errors"

	"github.com/framekeep/framekeep/internal/modules/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// actor returns the authenticated user placed in the context by the auth
// middleware.
func actor(c *gin.Context) (*model.User, error) {
	u, ok := c.MustGet("user").(*model.User)
	if !ok {
		return nil, errors.New("user not found in context")
	}
	return u, nil
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
