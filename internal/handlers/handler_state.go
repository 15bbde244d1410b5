package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pontovivo/ponto_vivo_app/internal/apperrors"
	"github.com/pontovivo/ponto_vivo_app/internal/core/domain"
	"github.com/pontovivo/ponto_vivo_app/internal/core/ports"
	"github.com/pontovivo/ponto_vivo_app/internal/dto"
	"github.com/pontovivo/ponto_vivo_app/internal/middleware"
)

// stateHandler serves the shared application document.
type stateHandler struct {
	stateService ports.StateSvcFacade
}

func newStateHandler(ss ports.StateSvcFacade) *stateHandler {
	return &stateHandler{stateService: ss}
}

// registerStateRoutes registers the document endpoints. Delete is
// restricted to authenticated admins.
func registerStateRoutes(rg *gin.RouterGroup, stateService ports.StateSvcFacade, jwtSecret string) {
	h := newStateHandler(stateService)

	rg.GET("/state", h.getState)
	rg.POST("/state", h.saveState)
	rg.DELETE("/state", middleware.AuthMiddleware(jwtSecret), h.deleteState)
}

// getState godoc
// @Summary Get the stored document
// @Description Returns the document under the given key, with its last-write timestamp. A key never written yields data: null.
// @Tags state
// @Produce json
// @Param key query string false "Document key" default(primary)
// @Success 200 {object} dto.StateResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /state [get]
func (h *stateHandler) getState(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	key := stateKey(c)

	state, err := h.stateService.GetState(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Absent documents are a normal first-run condition, not an error.
			c.JSON(http.StatusOK, dto.ToStateResponse(nil))
			return
		}
		logger.Error("Failed to get state", slog.String("key", key), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Erro interno", Detail: "Falha ao carregar o documento."})
		return
	}

	c.JSON(http.StatusOK, dto.ToStateResponse(state))
}

// saveState godoc
// @Summary Overwrite the stored document
// @Description Whole-document replacement: creates the row if absent, else overwrites data, updated_at and schema_version.
// @Tags state
// @Accept json
// @Produce json
// @Param state body dto.SaveStateRequest true "Document payload"
// @Success 200 {object} dto.SaveStateResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /state [post]
func (h *stateHandler) saveState(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SaveStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SaveState", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Missing data", Detail: err.Error()})
		return
	}
	key := req.Key
	if key == "" {
		key = domain.StateKey
	}

	updatedAt, err := h.stateService.SaveState(c.Request.Context(), key, req.Data)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Rejected invalid state payload", slog.String("key", key), slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Missing data", Detail: "O campo data e obrigatorio."})
			return
		}
		logger.Error("Failed to save state", slog.String("key", key), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Erro interno", Detail: "Falha ao salvar o documento."})
		return
	}

	logger.Info("State saved", slog.String("key", key), slog.Time("updated_at", updatedAt))
	c.JSON(http.StatusOK, dto.SaveStateResponse{OK: true, UpdatedAt: updatedAt})
}

// deleteState godoc
// @Summary Delete the stored document
// @Description Removes the row for the key. Admin session required.
// @Tags state
// @Produce json
// @Param key query string false "Document key" default(primary)
// @Success 204
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /state [delete]
func (h *stateHandler) deleteState(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	key := stateKey(c)

	adminID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.stateService.DeleteState(c.Request.Context(), key); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Not found", Detail: "Nenhum documento para a chave informada."})
			return
		}
		logger.Error("Failed to delete state", slog.String("key", key), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Erro interno", Detail: "Falha ao remover o documento."})
		return
	}

	logger.Info("State deleted", slog.String("key", key), slog.String("admin_id", adminID))
	c.Status(http.StatusNoContent)
}

func stateKey(c *gin.Context) string {
	key := c.Query("key")
	if key == "" {
		return domain.StateKey
	}
	return key
}
