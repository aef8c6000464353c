package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/dojoportal/internal/api/middleware"
	"github.com/yoockh/dojoportal/internal/models"
	"github.com/yoockh/dojoportal/internal/providers/auth"
	"github.com/yoockh/dojoportal/internal/services"
	"github.com/yoockh/dojoportal/internal/utils"
)

type AuthHandler struct {
	accounts services.AccountService
}

func NewAuthHandler(accounts services.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	AsRole   string `json:"as_role"`
}

type SignUpRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	InviteCode string `json:"invite_code"`
}

type SessionResponse struct {
	*auth.Session
	Profile *models.Profile `json:"profile"`
	// Redirect is where the portal sends the user next.
	Redirect string `json:"redirect"`
}

func landingFor(p *models.Profile) string {
	if p.EffectiveRole() == models.RoleAdmin {
		return "/admin"
	}
	return "/profile"
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AuthHandler.SignIn", "invalid request body", err))
		return
	}

	var asRole models.UserRole
	if req.AsRole != "" {
		asRole = models.ParseRole(req.AsRole)
	}

	sess, p, err := h.accounts.SignIn(c.Request.Context(), req.Email, req.Password, asRole)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SessionResponse{Session: sess, Profile: p, Redirect: landingFor(p)})
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AuthHandler.SignUp", "invalid request body", err))
		return
	}

	sess, p, err := h.accounts.SignUp(c.Request.Context(), req.Email, req.Password, models.UserRole(req.Role), req.InviteCode)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SessionResponse{Session: sess, Profile: p, Redirect: landingFor(p)})
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	if err := h.accounts.SignOut(c.Request.Context(), *id, middleware.AccessTokenFrom(c)); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"redirect": "/"})
}
