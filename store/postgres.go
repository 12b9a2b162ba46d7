package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanchitpandey/visitpass-api/models"
)

const uniqueViolation = "23505"

// PostgresStore runs all persistence against a pgx pool. The unique indexes in
// the schema are the source of truth for aadhaar/QR/email uniqueness; the
// Exists* helpers only let handlers return friendlier messages first.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the tables and constraints on startup.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS visitors (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			phone_number TEXT NOT NULL,
			email TEXT NOT NULL,
			aadhaar_number TEXT NOT NULL UNIQUE,
			age INT NOT NULL,
			sex TEXT NOT NULL,
			address TEXT NOT NULL,
			official_to_meet TEXT NOT NULL,
			referred_by TEXT NOT NULL DEFAULT '',
			diseases TEXT NOT NULL DEFAULT '',
			selfie_url TEXT NOT NULL,
			qr_code_data TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL DEFAULT 'outside',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS accounts (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			phone_number TEXT NOT NULL DEFAULT '',
			firebase_uid TEXT,
			role TEXT NOT NULL,
			visitor_id UUID REFERENCES visitors(id),
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS visit_logs (
			id UUID PRIMARY KEY,
			visitor_id UUID NOT NULL REFERENCES visitors(id),
			entry_time TIMESTAMPTZ,
			exit_time TIMESTAMPTZ,
			purpose TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS idx_visit_logs_visitor ON visit_logs(visitor_id, entry_time DESC);
	`)
	return err
}

func (s *PostgresStore) CreateAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, name, email, password_hash, phone_number, firebase_uid, role, visitor_id, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.Exec(ctx, query,
		account.ID,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.PhoneNumber,
		account.FirebaseUID,
		account.Role,
		account.VisitorID,
		account.IsActive,
		account.CreatedAt,
	)
	return mapPgError(err)
}

const accountColumns = `id, name, email, password_hash, phone_number, firebase_uid, role, visitor_id, is_active, created_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Email,
		&a.PasswordHash,
		&a.PhoneNumber,
		&a.FirebaseUID,
		&a.Role,
		&a.VisitorID,
		&a.IsActive,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *PostgresStore) AccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	row := s.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

func (s *PostgresStore) AccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	row := s.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	return scanAccount(row)
}

func (s *PostgresStore) AccountByPhoneAndRole(ctx context.Context, phone, role string) (*models.Account, error) {
	row := s.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE phone_number = $1 AND role = $2`, phone, role)
	return scanAccount(row)
}

func (s *PostgresStore) AccountExistsByPhone(ctx context.Context, phone string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE phone_number = $1)`, phone).Scan(&exists)
	return exists, err
}

func (s *PostgresStore) VisitorExistsByAadhaar(ctx context.Context, aadhaar string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM visitors WHERE aadhaar_number = $1)`, aadhaar).Scan(&exists)
	return exists, err
}

func (s *PostgresStore) CreateVisitorWithAccount(ctx context.Context, visitor *models.Visitor, account *models.Account) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO visitors (id, name, phone_number, email, aadhaar_number, age, sex, address,
			official_to_meet, referred_by, diseases, selfie_url, qr_code_data, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		visitor.ID,
		visitor.Name,
		visitor.PhoneNumber,
		visitor.Email,
		visitor.AadhaarNumber,
		visitor.Age,
		visitor.Sex,
		visitor.Address,
		visitor.OfficialToMeet,
		visitor.ReferredBy,
		visitor.Diseases,
		visitor.SelfieURL,
		visitor.QRCodeData,
		visitor.Status,
		visitor.CreatedAt,
		visitor.UpdatedAt,
	)
	if err != nil {
		return mapPgError(err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO accounts (id, name, email, password_hash, phone_number, firebase_uid, role, visitor_id, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		account.ID,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.PhoneNumber,
		account.FirebaseUID,
		account.Role,
		account.VisitorID,
		account.IsActive,
		account.CreatedAt,
	)
	if err != nil {
		return mapPgError(err)
	}

	return tx.Commit(ctx)
}

const visitorColumns = `id, name, phone_number, email, aadhaar_number, age, sex, address,
	official_to_meet, referred_by, diseases, selfie_url, qr_code_data, status, created_at, updated_at`

func scanVisitor(row pgx.Row) (*models.Visitor, error) {
	var v models.Visitor
	err := row.Scan(
		&v.ID,
		&v.Name,
		&v.PhoneNumber,
		&v.Email,
		&v.AadhaarNumber,
		&v.Age,
		&v.Sex,
		&v.Address,
		&v.OfficialToMeet,
		&v.ReferredBy,
		&v.Diseases,
		&v.SelfieURL,
		&v.QRCodeData,
		&v.Status,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (s *PostgresStore) VisitorByID(ctx context.Context, id uuid.UUID) (*models.Visitor, error) {
	row := s.db.QueryRow(ctx, `SELECT `+visitorColumns+` FROM visitors WHERE id = $1`, id)
	return scanVisitor(row)
}

func (s *PostgresStore) ListVisitors(ctx context.Context, q models.ListVisitorsQuery) ([]models.Visitor, int, error) {
	where := "TRUE"
	args := []interface{}{}
	n := 1

	if q.Date != nil {
		day := q.Date.UTC().Truncate(24 * time.Hour)
		where += fmt.Sprintf(" AND created_at >= $%d AND created_at < $%d", n, n+1)
		args = append(args, day, day.Add(24*time.Hour))
		n += 2
	}
	if q.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, q.Status)
		n++
	}

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM visitors WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM visitors WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		visitorColumns, where, n, n+1)
	args = append(args, q.Limit, (q.Page-1)*q.Limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var visitors []models.Visitor
	for rows.Next() {
		v, err := scanVisitor(rows)
		if err != nil {
			return nil, 0, err
		}
		visitors = append(visitors, *v)
	}
	return visitors, total, rows.Err()
}

func (s *PostgresStore) RecordEntry(ctx context.Context, qrCodeData, purpose string, now time.Time) (*models.Visitor, *models.VisitLog, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	// Row lock serializes concurrent entry/exit for the same visitor.
	visitor, err := scanVisitor(tx.QueryRow(ctx,
		`SELECT `+visitorColumns+` FROM visitors WHERE qr_code_data = $1 FOR UPDATE`, qrCodeData))
	if err != nil {
		return nil, nil, err
	}

	if visitor.Status == models.StatusInside {
		return nil, nil, ErrAlreadyInside
	}

	if _, err := tx.Exec(ctx,
		`UPDATE visitors SET status = $1, updated_at = $2 WHERE id = $3`,
		models.StatusInside, now, visitor.ID); err != nil {
		return nil, nil, err
	}
	visitor.Status = models.StatusInside
	visitor.UpdatedAt = now

	visitLog := &models.VisitLog{
		ID:        uuid.New(),
		VisitorID: visitor.ID,
		EntryTime: &now,
		Purpose:   purpose,
		CreatedAt: now,
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO visit_logs (id, visitor_id, entry_time, exit_time, purpose, created_at)
		 VALUES ($1, $2, $3, NULL, $4, $5)`,
		visitLog.ID, visitLog.VisitorID, visitLog.EntryTime, visitLog.Purpose, visitLog.CreatedAt); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return visitor, visitLog, nil
}

func (s *PostgresStore) RecordExit(ctx context.Context, qrCodeData string, now time.Time) (*models.Visitor, *models.VisitLog, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	visitor, err := scanVisitor(tx.QueryRow(ctx,
		`SELECT `+visitorColumns+` FROM visitors WHERE qr_code_data = $1 FOR UPDATE`, qrCodeData))
	if err != nil {
		return nil, nil, err
	}

	if visitor.Status != models.StatusInside {
		return nil, nil, ErrNotInside
	}

	var visitLog models.VisitLog
	err = tx.QueryRow(ctx, `
		SELECT id, visitor_id, entry_time, exit_time, purpose, created_at
		FROM visit_logs
		WHERE visitor_id = $1 AND exit_time IS NULL
		ORDER BY entry_time DESC
		LIMIT 1
	`, visitor.ID).Scan(
		&visitLog.ID,
		&visitLog.VisitorID,
		&visitLog.EntryTime,
		&visitLog.ExitTime,
		&visitLog.Purpose,
		&visitLog.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Status says inside but no open log exists. Surface the desync
			// instead of repairing it silently.
			return nil, nil, ErrNoOpenLog
		}
		return nil, nil, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE visit_logs SET exit_time = $1 WHERE id = $2`, now, visitLog.ID); err != nil {
		return nil, nil, err
	}
	visitLog.ExitTime = &now

	if _, err := tx.Exec(ctx,
		`UPDATE visitors SET status = $1, updated_at = $2 WHERE id = $3`,
		models.StatusOutside, now, visitor.ID); err != nil {
		return nil, nil, err
	}
	visitor.Status = models.StatusOutside
	visitor.UpdatedAt = now

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return visitor, &visitLog, nil
}

func (s *PostgresStore) VisitHistory(ctx context.Context, visitorID uuid.UUID, limit int) ([]models.VisitLog, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, visitor_id, entry_time, exit_time, purpose, created_at
		FROM visit_logs
		WHERE visitor_id = $1
		ORDER BY entry_time DESC
		LIMIT $2
	`, visitorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.VisitLog
	for rows.Next() {
		var l models.VisitLog
		if err := rows.Scan(&l.ID, &l.VisitorID, &l.EntryTime, &l.ExitTime, &l.Purpose, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (s *PostgresStore) LogsBetween(ctx context.Context, from, to time.Time) ([]models.VisitLogWithVisitor, error) {
	rows, err := s.db.Query(ctx, `
		SELECT l.id, l.visitor_id, l.entry_time, l.exit_time, l.purpose, l.created_at, `+prefixedVisitorColumns("v")+`
		FROM visit_logs l
		JOIN visitors v ON v.id = l.visitor_id
		WHERE (l.entry_time >= $1 AND l.entry_time < $2)
		   OR (l.exit_time >= $1 AND l.exit_time < $2)
		ORDER BY l.entry_time ASC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.VisitLogWithVisitor
	for rows.Next() {
		var l models.VisitLogWithVisitor
		err := rows.Scan(
			&l.ID,
			&l.VisitorID,
			&l.EntryTime,
			&l.ExitTime,
			&l.Purpose,
			&l.CreatedAt,
			&l.Visitor.ID,
			&l.Visitor.Name,
			&l.Visitor.PhoneNumber,
			&l.Visitor.Email,
			&l.Visitor.AadhaarNumber,
			&l.Visitor.Age,
			&l.Visitor.Sex,
			&l.Visitor.Address,
			&l.Visitor.OfficialToMeet,
			&l.Visitor.ReferredBy,
			&l.Visitor.Diseases,
			&l.Visitor.SelfieURL,
			&l.Visitor.QRCodeData,
			&l.Visitor.Status,
			&l.Visitor.CreatedAt,
			&l.Visitor.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func prefixedVisitorColumns(alias string) string {
	cols := []string{"id", "name", "phone_number", "email", "aadhaar_number", "age", "sex", "address",
		"official_to_meet", "referred_by", "diseases", "selfie_url", "qr_code_data", "status", "created_at", "updated_at"}
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += alias + "." + c
	}
	return out
}

func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}
