package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"massage-board-backend/internal/store"
)

type putWorkersRequest struct {
	Workers []string `json:"workers" binding:"required"`
}

type reorderWorkerRequest struct {
	From *int `json:"from" binding:"required"`
	To   *int `json:"to" binding:"required"`
}

// GetWorkers returns the roster in column order.
func (h *Handler) GetWorkers(c *gin.Context) {
	workers, err := h.store.ListWorkers(c.Request.Context())
	if err != nil {
		internalError(c, "Error fetching workers", err)
		return
	}
	c.JSON(http.StatusOK, workers)
}

// PutWorkers replaces the roster with the given ordered names.
func (h *Handler) PutWorkers(c *gin.Context) {
	var req putWorkersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	workers, err := h.store.ReplaceWorkers(c.Request.Context(), req.Workers)
	if err != nil {
		if errors.Is(err, store.ErrInvalidRoster) {
			badRequest(c, "Invalid worker list", err)
			return
		}
		internalError(c, "Error saving workers", err)
		return
	}
	c.JSON(http.StatusOK, workers)
}

// ReorderWorker moves one worker column to a new position.
func (h *Handler) ReorderWorker(c *gin.Context) {
	var req reorderWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	workers, err := h.store.MoveWorker(c.Request.Context(), store.Move{From: *req.From, To: *req.To})
	if err != nil {
		if errors.Is(err, store.ErrInvalidRoster) {
			badRequest(c, "Invalid worker position", err)
			return
		}
		internalError(c, "Error reordering workers", err)
		return
	}
	c.JSON(http.StatusOK, workers)
}
