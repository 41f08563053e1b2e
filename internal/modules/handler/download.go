package handler

import (
	"io"
	"net/http"

	"github.com/framekeep/framekeep/internal/modules/serializer"
	"github.com/framekeep/framekeep/internal/modules/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DownloadHandler struct {
	svc service.DownloadService
}

func NewDownloadHandler(s service.DownloadService) *DownloadHandler {
	return &DownloadHandler{svc: s}
}

type DownloadInfoReq struct {
	AssetIDs    []string `json:"asset_ids"`
	AlbumID     string   `json:"album_id"`
	UserID      string   `json:"user_id"`
	ArchiveSize int64    `json:"archive_size"`
}

// GetDownloadInfo plans size-bounded archives for the selection.
func (h *DownloadHandler) GetDownloadInfo(c *gin.Context) {
	user, err := actor(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	req := DownloadInfoReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	in := service.DownloadInfoInput{ArchiveSize: req.ArchiveSize}
	if in.AssetIDs, err = parseIDs(req.AssetIDs); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid asset id", err))
		return
	}
	if req.AlbumID != "" {
		albumID, err := uuid.Parse(req.AlbumID)
		if err != nil {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid album_id", err))
			return
		}
		in.AlbumID = &albumID
	}
	if req.UserID != "" {
		ownerID, err := uuid.Parse(req.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid user_id", err))
			return
		}
		in.UserID = &ownerID
	}

	info, err := h.svc.GetDownloadInfo(c.Request.Context(), user.ID, in)
	if err != nil {
		c.JSON(serializer.FromError(err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: info})
}

type DownloadArchiveReq struct {
	AssetIDs []string `json:"asset_ids" binding:"required,min=1"`
}

// DownloadArchive streams one zip of the requested originals.
func (h *DownloadHandler) DownloadArchive(c *gin.Context) {
	user, err := actor(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	req := DownloadArchiveReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	ids, err := parseIDs(req.AssetIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid asset id", err))
		return
	}

	body, err := h.svc.DownloadArchive(c.Request.Context(), user.ID, ids)
	if err != nil {
		c.JSON(serializer.FromError(err))
		return
	}
	defer body.Close()

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", `attachment; filename="framekeep.zip"`)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		// Headers are gone already; all we can do is log via gin's recovery.
		_ = c.Error(err)
	}
}
