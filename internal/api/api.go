// Package api serves the catalog REST contract:
// GET/POST /:collection and GET/PATCH/DELETE /:collection/:id.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/celerix-dev/celerix-catalog/internal/engine"
	"github.com/celerix-dev/celerix-catalog/pkg/listview"
)

type Handler struct {
	Store engine.CatalogStore
	Log   *zap.Logger
}

// Register mounts the catalog routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/collections", h.Collections)
	r.GET("/:collection", h.List)
	r.POST("/:collection", h.Create)
	r.GET("/:collection/:id", h.Get)
	r.PATCH("/:collection/:id", h.Update)
	r.DELETE("/:collection/:id", h.Delete)
}

func (h *Handler) Collections(c *gin.Context) {
	c.JSON(http.StatusOK, h.Store.Collections())
}

func (h *Handler) List(c *gin.Context) {
	records, err := h.Store.List(c.Param("collection"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) Get(c *gin.Context) {
	rec, err := h.Store.Get(c.Param("collection"), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) Create(c *gin.Context) {
	var rec listview.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.Store.Create(c.Param("collection"), rec)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.logger().Info("record created",
		zap.String("collection", c.Param("collection")),
		zap.Any("record", created))
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) Update(c *gin.Context) {
	var partial listview.Record
	if err := c.ShouldBindJSON(&partial); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.Store.Update(c.Param("collection"), c.Param("id"), partial)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.Store.Delete(c.Param("collection"), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrCollectionNotFound), errors.Is(err, engine.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidRecord):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		h.logger().Error("catalog request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *Handler) logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}
