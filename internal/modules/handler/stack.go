package handler

import (
	"net/http"

	"github.com/framekeep/framekeep/internal/modules/serializer"
	"github.com/framekeep/framekeep/internal/modules/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StackHandler struct {
	svc service.StackService
}

func NewStackHandler(s service.StackService) *StackHandler {
	return &StackHandler{svc: s}
}

type StackMutationReq struct {
	IDs           []string `json:"ids" binding:"required,min=1"`
	RemoveParent  bool     `json:"remove_parent"`
	StackParentID string   `json:"stack_parent_id"`
}

// UpdateStack groups the given assets under a parent, or detaches them from
// their stacks with remove_parent.
func (h *StackHandler) UpdateStack(c *gin.Context) {
	user, err := actor(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	req := StackMutationReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	ids, err := parseIDs(req.IDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid asset id", err))
		return
	}

	in := service.StackMutationInput{
		AssetIDs:     ids,
		RemoveParent: req.RemoveParent,
	}
	if req.StackParentID != "" {
		parentID, err := uuid.Parse(req.StackParentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid stack_parent_id", err))
			return
		}
		in.StackParentID = &parentID
	}

	touched, err := h.svc.ApplyStackMutation(c.Request.Context(), user.ID, in)
	if err != nil {
		c.JSON(serializer.FromError(err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: gin.H{"updated": touched}})
}
