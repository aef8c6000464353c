package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/dojoportal/internal/services"
	"github.com/yoockh/dojoportal/internal/utils"
)

type SetupHandler struct {
	accounts services.AccountService
}

func NewSetupHandler(accounts services.AccountService) *SetupHandler {
	return &SetupHandler{accounts: accounts}
}

type SeedRequest struct {
	Secret         string `json:"secret"`
	AdminEmail     string `json:"admin_email"`
	AdminPassword  string `json:"admin_password"`
	PlayerEmail    string `json:"player_email"`
	PlayerPassword string `json:"player_password"`
}

func (h *SetupHandler) Seed(c *gin.Context) {
	var req SeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SetupHandler.Seed", "invalid request body", err))
		return
	}

	res, err := h.accounts.Seed(c.Request.Context(), services.SeedRequest(req))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}
