package handler

import (
	"net/http"

	"github.com/framekeep/framekeep/internal/modules/serializer"
	"github.com/framekeep/framekeep/internal/modules/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AssetHandler struct {
	svc service.AssetService
}

func NewAssetHandler(s service.AssetService) *AssetHandler {
	return &AssetHandler{svc: s}
}

// GetAsset returns one asset with its stack, exif and library loaded.
func (h *AssetHandler) GetAsset(c *gin.Context) {
	user, err := actor(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	id, err := uuid.Parse(c.Param("asset_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid asset_id", err))
		return
	}

	asset, err := h.svc.Get(c.Request.Context(), user.ID, id)
	if err != nil {
		c.JSON(serializer.FromError(err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: asset})
}

type ListAssetsReq struct {
	Limit    int    `form:"limit,default=250" json:"limit" binding:"min=0,max=1000"`
	Cursor   string `form:"cursor" json:"cursor"`
	TimeDesc bool   `form:"time_desc,default=false" json:"time_desc"`
}

// ListAssets pages the caller's live assets with an opaque cursor.
func (h *AssetHandler) ListAssets(c *gin.Context) {
	user, err := actor(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	req := ListAssetsReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.List(c.Request.Context(), user.ID, service.ListAssetsInput{
		Limit:    req.Limit,
		Cursor:   req.Cursor,
		TimeDesc: req.TimeDesc,
	})
	if err != nil {
		c.JSON(serializer.FromError(err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// GetOriginalURL returns a short-lived download link for the original file.
func (h *AssetHandler) GetOriginalURL(c *gin.Context) {
	user, err := actor(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	id, err := uuid.Parse(c.Param("asset_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid asset_id", err))
		return
	}

	url, err := h.svc.PresignOriginal(c.Request.Context(), user.ID, id)
	if err != nil {
		c.JSON(serializer.FromError(err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: gin.H{"url": url}})
}

// UploadAsset ingests one original file from a multipart form.
func (h *AssetHandler) UploadAsset(c *gin.Context) {
	user, err := actor(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("missing file", err))
		return
	}

	var libraryID *uuid.UUID
	if raw := c.PostForm("library_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid library_id", err))
			return
		}
		libraryID = &id
	}

	file, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("open file", err))
		return
	}
	defer file.Close()

	asset, err := h.svc.Upload(c.Request.Context(), user.ID, service.UploadInput{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		LibraryID:   libraryID,
		Body:        file,
	})
	if err != nil {
		c.JSON(serializer.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: asset})
}

type DeleteAssetsReq struct {
	IDs   []string `json:"ids" binding:"required,min=1"`
	Force bool     `json:"force"`
}

// DeleteAssets trashes the given assets, or queues permanent deletion with
// force.
func (h *AssetHandler) DeleteAssets(c *gin.Context) {
	user, err := actor(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	req := DeleteAssetsReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	ids, err := parseIDs(req.IDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid asset id", err))
		return
	}

	if err := h.svc.DeleteAll(c.Request.Context(), user.ID, ids, req.Force); err != nil {
		c.JSON(serializer.FromError(err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "ok"})
}

type RestoreAssetsReq struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

func (h *AssetHandler) RestoreAssets(c *gin.Context) {
	user, err := actor(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	req := RestoreAssetsReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	ids, err := parseIDs(req.IDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid asset id", err))
		return
	}

	if err := h.svc.RestoreAll(c.Request.Context(), user.ID, ids); err != nil {
		c.JSON(serializer.FromError(err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "ok"})
}
