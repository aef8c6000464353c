package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/dojoportal/internal/models"
	"github.com/yoockh/dojoportal/internal/records"
	"github.com/yoockh/dojoportal/internal/utils"
)

// RecordHandler serves one admin ledger over REST.
type RecordHandler[T models.Record[T], D any] struct {
	svc records.Service[T, D]
}

func NewRecordHandler[T models.Record[T], D any](svc records.Service[T, D]) *RecordHandler[T, D] {
	return &RecordHandler[T, D]{svc: svc}
}

func (h *RecordHandler[T, D]) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *RecordHandler[T, D]) Create(c *gin.Context) {
	var d D
	if err := c.ShouldBindJSON(&d); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "RecordHandler.Create", "invalid request body", err))
		return
	}

	rec, err := h.svc.Create(c.Request.Context(), d)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rec)
}

func (h *RecordHandler[T, D]) Update(c *gin.Context) {
	var d D
	if err := c.ShouldBindJSON(&d); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "RecordHandler.Update", "invalid request body", err))
		return
	}

	if err := h.svc.Update(c.Request.Context(), c.Param("id"), d); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecordHandler[T, D]) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type FundsHandler struct {
	*RecordHandler[models.FundRecord, models.FundDraft]
}

func NewFundsHandler(svc records.Service[models.FundRecord, models.FundDraft]) *FundsHandler {
	return &FundsHandler{RecordHandler: NewRecordHandler(svc)}
}

// Total reports the sum of all fund amounts.
func (h *FundsHandler) Total(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"total": records.Total(items), "count": len(items)})
}

type PlayersHandler = RecordHandler[models.PlayerRecord, models.PlayerDraft]

func NewPlayersHandler(svc records.Service[models.PlayerRecord, models.PlayerDraft]) *PlayersHandler {
	return NewRecordHandler(svc)
}
