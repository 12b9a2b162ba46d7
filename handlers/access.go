package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sanchitpandey/visitpass-api/models"
	"github.com/sanchitpandey/visitpass-api/store"
)

type AccessHandler struct {
	store store.Store
}

func NewAccessHandler(st store.Store) *AccessHandler {
	return &AccessHandler{store: st}
}

// Entry records a visitor entering the premises, keyed by QR token.
func (h *AccessHandler) Entry(c *gin.Context) {
	var req models.EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "QR code data is required"})
		return
	}

	purpose := req.Purpose
	if purpose == "" {
		purpose = "General visit"
	}

	visitor, visitLog, err := h.store.RecordEntry(c.Request.Context(), req.QRCodeData, purpose, time.Now())
	if err != nil {
		switch err {
		case store.ErrNotFound:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Visitor not found"})
		case store.ErrAlreadyInside:
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Visitor is already inside the premises"})
		default:
			log.Printf("Error recording entry: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Entry recorded successfully",
		"data": gin.H{
			"visitor":  visitor,
			"visitLog": visitLog,
		},
	})
}

// Exit records a visitor leaving the premises, closing their open visit log.
func (h *AccessHandler) Exit(c *gin.Context) {
	var req models.ExitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "QR code data is required"})
		return
	}

	visitor, visitLog, err := h.store.RecordExit(c.Request.Context(), req.QRCodeData, time.Now())
	if err != nil {
		switch err {
		case store.ErrNotFound:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Visitor not found"})
		case store.ErrNotInside:
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Visitor is not inside the premises"})
		case store.ErrNoOpenLog:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "No active visit found for this visitor"})
		default:
			log.Printf("Error recording exit: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Exit recorded successfully",
		"data": gin.H{
			"visitor":  visitor,
			"visitLog": visitLog,
		},
	})
}
