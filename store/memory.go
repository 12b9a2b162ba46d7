package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sanchitpandey/visitpass-api/models"
)

// MemoryStore keeps everything behind one mutex, which also gives it the same
// per-visitor serialization the Postgres transactions provide. Used by tests
// and useful for local runs without a database.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]models.Account
	visitors map[uuid.UUID]models.Visitor
	logs     map[uuid.UUID]models.VisitLog
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[uuid.UUID]models.Account),
		visitors: make(map[uuid.UUID]models.Visitor),
		logs:     make(map[uuid.UUID]models.VisitLog),
	}
}

func (s *MemoryStore) CreateAccount(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email == account.Email {
			return ErrDuplicate
		}
	}
	s.accounts[account.ID] = *account
	return nil
}

func (s *MemoryStore) AccountByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.accounts[id]; ok {
		return &a, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) AccountByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.Email == email {
			a := a
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) AccountByPhoneAndRole(_ context.Context, phone, role string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.PhoneNumber == phone && a.Role == role {
			a := a
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) AccountExistsByPhone(_ context.Context, phone string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.PhoneNumber == phone {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) VisitorExistsByAadhaar(_ context.Context, aadhaar string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.visitors {
		if v.AadhaarNumber == aadhaar {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) CreateVisitorWithAccount(_ context.Context, visitor *models.Visitor, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.visitors {
		if v.AadhaarNumber == visitor.AadhaarNumber || v.QRCodeData == visitor.QRCodeData {
			return ErrDuplicate
		}
	}
	for _, a := range s.accounts {
		if a.Email == account.Email {
			return ErrDuplicate
		}
	}
	s.visitors[visitor.ID] = *visitor
	s.accounts[account.ID] = *account
	return nil
}

func (s *MemoryStore) VisitorByID(_ context.Context, id uuid.UUID) (*models.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.visitors[id]; ok {
		return &v, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListVisitors(_ context.Context, q models.ListVisitorsQuery) ([]models.Visitor, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Visitor
	for _, v := range s.visitors {
		if q.Status != "" && v.Status != q.Status {
			continue
		}
		if q.Date != nil {
			day := q.Date.UTC().Truncate(24 * time.Hour)
			created := v.CreatedAt.UTC()
			if created.Before(day) || !created.Before(day.Add(24*time.Hour)) {
				continue
			}
		}
		matched = append(matched, v)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (q.Page - 1) * q.Limit
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *MemoryStore) visitorByQR(qrCodeData string) (uuid.UUID, bool) {
	for id, v := range s.visitors {
		if v.QRCodeData == qrCodeData {
			return id, true
		}
	}
	return uuid.Nil, false
}

func (s *MemoryStore) RecordEntry(_ context.Context, qrCodeData, purpose string, now time.Time) (*models.Visitor, *models.VisitLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.visitorByQR(qrCodeData)
	if !ok {
		return nil, nil, ErrNotFound
	}
	visitor := s.visitors[id]
	if visitor.Status == models.StatusInside {
		return nil, nil, ErrAlreadyInside
	}

	visitor.Status = models.StatusInside
	visitor.UpdatedAt = now
	s.visitors[id] = visitor

	visitLog := models.VisitLog{
		ID:        uuid.New(),
		VisitorID: id,
		EntryTime: &now,
		Purpose:   purpose,
		CreatedAt: now,
	}
	s.logs[visitLog.ID] = visitLog
	return &visitor, &visitLog, nil
}

func (s *MemoryStore) RecordExit(_ context.Context, qrCodeData string, now time.Time) (*models.Visitor, *models.VisitLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.visitorByQR(qrCodeData)
	if !ok {
		return nil, nil, ErrNotFound
	}
	visitor := s.visitors[id]
	if visitor.Status != models.StatusInside {
		return nil, nil, ErrNotInside
	}

	var open *models.VisitLog
	for logID := range s.logs {
		l := s.logs[logID]
		if l.VisitorID != id || l.ExitTime != nil {
			continue
		}
		if open == nil || l.EntryTime.After(*open.EntryTime) {
			l := l
			open = &l
		}
	}
	if open == nil {
		return nil, nil, ErrNoOpenLog
	}

	open.ExitTime = &now
	s.logs[open.ID] = *open

	visitor.Status = models.StatusOutside
	visitor.UpdatedAt = now
	s.visitors[id] = visitor
	return &visitor, open, nil
}

func (s *MemoryStore) VisitHistory(_ context.Context, visitorID uuid.UUID, limit int) ([]models.VisitLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var logs []models.VisitLog
	for _, l := range s.logs {
		if l.VisitorID == visitorID {
			logs = append(logs, l)
		}
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].EntryTime.After(*logs[j].EntryTime)
	})
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (s *MemoryStore) LogsBetween(_ context.Context, from, to time.Time) ([]models.VisitLogWithVisitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inWindow := func(t *time.Time) bool {
		return t != nil && !t.Before(from) && t.Before(to)
	}

	var logs []models.VisitLogWithVisitor
	for _, l := range s.logs {
		if !inWindow(l.EntryTime) && !inWindow(l.ExitTime) {
			continue
		}
		logs = append(logs, models.VisitLogWithVisitor{
			VisitLog: l,
			Visitor:  s.visitors[l.VisitorID],
		})
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].EntryTime.Before(*logs[j].EntryTime)
	})
	return logs, nil
}
