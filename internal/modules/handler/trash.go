package handler

import (
	"net/http"

	"github.com/framekeep/framekeep/internal/modules/serializer"
	"github.com/framekeep/framekeep/internal/modules/service"
	"github.com/gin-gonic/gin"
)

type TrashHandler struct {
	svc service.TrashService
}

func NewTrashHandler(s service.TrashService) *TrashHandler {
	return &TrashHandler{svc: s}
}

// RestoreTrash brings every trashed asset of the caller back.
func (h *TrashHandler) RestoreTrash(c *gin.Context) {
	user, err := actor(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	count, err := h.svc.RestoreAll(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(serializer.FromError(err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: gin.H{"count": count}})
}

// EmptyTrash queues permanent deletion for every trashed asset of the caller.
func (h *TrashHandler) EmptyTrash(c *gin.Context) {
	user, err := actor(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	count, err := h.svc.EmptyAll(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(serializer.FromError(err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: gin.H{"count": count}})
}
