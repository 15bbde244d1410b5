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

// authHandler serves admin login and worker autologin.
type authHandler struct {
	authService  ports.AuthSvcFacade
	stateService ports.StateSvcFacade
}

func newAuthHandler(as ports.AuthSvcFacade, ss ports.StateSvcFacade) *authHandler {
	return &authHandler{authService: as, stateService: ss}
}

func registerAuthRoutes(rg *gin.RouterGroup, authService ports.AuthSvcFacade, stateService ports.StateSvcFacade) {
	h := newAuthHandler(authService, stateService)

	auth := rg.Group("/auth")
	{
		auth.POST("/login", h.login)
		auth.POST("/autologin", h.autologin)
	}
}

// login godoc
// @Summary Admin login
// @Description Verifies admin credentials against the stored document and issues a session token.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Admin credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Dados invalidos", Detail: "Informe email e senha."})
		return
	}

	token, admin, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) || errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Admin login refused", slog.String("email", req.Email))
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Credenciais invalidas"})
			return
		}
		logger.Error("Admin login failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Erro interno", Detail: "Falha ao autenticar."})
		return
	}

	logger.Info("Admin logged in", slog.String("admin_id", admin.ID))
	c.JSON(http.StatusOK, dto.LoginResponse{Token: token, Name: admin.Name, Email: admin.Email})
}

// autologin godoc
// @Summary Worker autologin
// @Description Maps a one-time access token to exactly one worker identity. The caller discards the token on success so it is not re-triggered or bookmarked.
// @Tags auth
// @Accept json
// @Produce json
// @Param token body dto.AutologinRequest true "One-time access token"
// @Success 200 {object} dto.AutologinResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/autologin [post]
func (h *authHandler) autologin(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.AutologinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Dados invalidos", Detail: "Informe o token de acesso."})
		return
	}

	identity, err := h.stateService.ResolveAutologin(c.Request.Context(), domain.StateKey, req.Token)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) || errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Autologin token refused")
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Link invalido ou expirado"})
			return
		}
		logger.Error("Autologin failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Erro interno", Detail: "Falha ao autenticar."})
		return
	}

	logger.Info("Worker autologin", slog.String("employee_id", identity.EmployeeID), slog.String("org_id", identity.OrgID))
	c.JSON(http.StatusOK, dto.AutologinResponse{
		OrgID:      identity.OrgID,
		EmployeeID: identity.EmployeeID,
		Name:       identity.Name,
		Role:       string(identity.Role),
		CanPunch:   identity.CanPunch,
	})
}
