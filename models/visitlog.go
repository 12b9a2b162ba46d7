package models

import (
	"time"

	"github.com/google/uuid"
)

type VisitLog struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	VisitorID uuid.UUID  `json:"visitor_id" db:"visitor_id"`
	EntryTime *time.Time `json:"entryTime" db:"entry_time"`
	ExitTime  *time.Time `json:"exitTime" db:"exit_time"`
	Purpose   string     `json:"purpose" db:"purpose"`
	CreatedAt time.Time  `json:"date" db:"created_at"`
}

// VisitLogWithVisitor joins a log to its visitor for report rendering.
type VisitLogWithVisitor struct {
	VisitLog
	Visitor Visitor `json:"visitor"`
}

type EntryRequest struct {
	QRCodeData string `json:"qrCodeData" binding:"required"`
	Purpose    string `json:"purpose"`
}

type ExitRequest struct {
	QRCodeData string `json:"qrCodeData" binding:"required"`
}
