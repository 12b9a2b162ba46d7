package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sanchitpandey/visitpass-api/models"
)

// Sentinel errors keep the handler layer free of storage details; each maps to
// one entry in the HTTP error taxonomy.
var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicate     = errors.New("record already exists")
	ErrAlreadyInside = errors.New("visitor is already inside the premises")
	ErrNotInside     = errors.New("visitor is not inside the premises")
	ErrNoOpenLog     = errors.New("no active visit found for this visitor")
)

// Store is interface-driven so handlers stay testable against the in-memory
// implementation while production runs on Postgres.
type Store interface {
	// Accounts
	CreateAccount(ctx context.Context, account *models.Account) error
	AccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	AccountByEmail(ctx context.Context, email string) (*models.Account, error)
	AccountByPhoneAndRole(ctx context.Context, phone, role string) (*models.Account, error)
	AccountExistsByPhone(ctx context.Context, phone string) (bool, error)

	// Visitors
	VisitorExistsByAadhaar(ctx context.Context, aadhaar string) (bool, error)
	// CreateVisitorWithAccount inserts the visitor and its linked account
	// both-or-neither.
	CreateVisitorWithAccount(ctx context.Context, visitor *models.Visitor, account *models.Account) error
	VisitorByID(ctx context.Context, id uuid.UUID) (*models.Visitor, error)
	ListVisitors(ctx context.Context, q models.ListVisitorsQuery) ([]models.Visitor, int, error)

	// Access state machine. Both operations serialize the status update and the
	// log write for one visitor inside a single transaction.
	RecordEntry(ctx context.Context, qrCodeData, purpose string, now time.Time) (*models.Visitor, *models.VisitLog, error)
	RecordExit(ctx context.Context, qrCodeData string, now time.Time) (*models.Visitor, *models.VisitLog, error)

	// Visit logs
	VisitHistory(ctx context.Context, visitorID uuid.UUID, limit int) ([]models.VisitLog, error)
	// LogsBetween returns logs whose entry or exit time falls in [from, to),
	// joined to their visitors, ordered by entry time.
	LogsBetween(ctx context.Context, from, to time.Time) ([]models.VisitLogWithVisitor, error)
}
