package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acadgrid/timetable-api/internal/dto"
	"github.com/acadgrid/timetable-api/internal/models"
	"github.com/acadgrid/timetable-api/internal/service"
	appErrors "github.com/acadgrid/timetable-api/pkg/errors"
	"github.com/acadgrid/timetable-api/pkg/response"
)

// TimetableHandler exposes the interactive scheduling endpoints.
type TimetableHandler struct {
	service *service.TimetableService
}

// NewTimetableHandler constructs a timetable handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

func keyFromPath(c *gin.Context) (models.TimetableKey, error) {
	kind, err := models.ParseTimetableType(c.Param("type"))
	if err != nil {
		return models.TimetableKey{}, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	key := models.TimetableKey{
		Semester: c.Param("semester"),
		Branch:   c.Param("branch"),
		Batch:    c.Param("batch"),
		Type:     kind,
	}
	if err := key.Validate(); err != nil {
		return models.TimetableKey{}, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	return key, nil
}

// List returns stored timetable names, optionally filtered by prefix.
func (h *TimetableHandler) List(c *gin.Context) {
	names, err := h.service.List(c.Request.Context(), c.Query("prefix"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, names, nil)
}

// Get returns the editing state for one timetable.
func (h *TimetableHandler) Get(c *gin.Context) {
	key, err := keyFromPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.service.Get(c.Request.Context(), key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Place commits a course into a cell.
func (h *TimetableHandler) Place(c *gin.Context) {
	key, err := keyFromPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.PlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.service.Place(c.Request.Context(), key, actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !result.Result.Committed {
		response.JSON(c, appErrors.ErrPlacementBlocked.Status, result, nil)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Evaluate previews a candidate cell without committing.
func (h *TimetableHandler) Evaluate(c *gin.Context) {
	key, err := keyFromPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	eval, err := h.service.Evaluate(c.Request.Context(), key, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, eval, nil)
}

// Move relocates an existing assignment.
func (h *TimetableHandler) Move(c *gin.Context) {
	key, err := keyFromPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.service.Move(c.Request.Context(), key, actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !result.Result.Committed {
		response.JSON(c, appErrors.ErrPlacementBlocked.Status, result, nil)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Remove clears a cell.
func (h *TimetableHandler) Remove(c *gin.Context) {
	key, err := keyFromPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.RemoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	view, err := h.service.Remove(c.Request.Context(), key, actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Undo steps the session back one snapshot.
func (h *TimetableHandler) Undo(c *gin.Context) {
	key, err := keyFromPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.service.Undo(c.Request.Context(), key, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Redo steps the session forward one snapshot.
func (h *TimetableHandler) Redo(c *gin.Context) {
	key, err := keyFromPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.service.Redo(c.Request.Context(), key, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Suggest returns resolver suggestions for a running conflict.
func (h *TimetableHandler) Suggest(c *gin.Context) {
	key, err := keyFromPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	suggestions, err := h.service.Suggest(c.Request.Context(), key, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestions, nil)
}

// ApplySuggestion commits one resolver suggestion.
func (h *TimetableHandler) ApplySuggestion(c *gin.Context) {
	key, err := keyFromPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ApplySuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	view, err := h.service.ApplySuggestion(c.Request.Context(), key, actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// AutoArrange fills free cells with a batch's pending courses.
func (h *TimetableHandler) AutoArrange(c *gin.Context) {
	key, err := keyFromPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.AutoArrangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.service.AutoArrange(c.Request.Context(), key, actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Save persists the session snapshot synchronously.
func (h *TimetableHandler) Save(c *gin.Context) {
	key, err := keyFromPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Save(c.Request.Context(), key, actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ValidateIndex runs the session index diagnostic.
func (h *TimetableHandler) ValidateIndex(c *gin.Context) {
	key, err := keyFromPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	diagnostics, err := h.service.ValidateIndex(c.Request.Context(), key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, diagnostics, nil)
}

// Delete removes a stored timetable.
func (h *TimetableHandler) Delete(c *gin.Context) {
	key, err := keyFromPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), key); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
