package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/dojoportal/internal/api/middleware"
	"github.com/yoockh/dojoportal/internal/models"
)

type ProfileHandler struct{}

func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

type MeResponse struct {
	User    *models.Identity `json:"user"`
	Profile *models.Profile  `json:"profile"`
	Role    models.UserRole  `json:"role"`
	IsAdmin bool             `json:"is_admin"`
}

// Me reports the session resolved by the Session middleware.
func (h *ProfileHandler) Me(c *gin.Context) {
	st := middleware.SessionFrom(c)
	c.JSON(http.StatusOK, MeResponse{
		User:    st.Identity,
		Profile: st.Profile,
		Role:    st.Role(),
		IsAdmin: st.IsAdmin(),
	})
}
