// Package memory is an in-process implementation of repository.Store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/tiffinwala/tiffin/internal/domain/models"
	"github.com/tiffinwala/tiffin/internal/repository"
)

// Store keeps all documents in maps guarded by a single lock.
type Store struct {
	mu         sync.RWMutex
	seq        int
	clients    map[string]models.Client
	attendance map[string]models.AttendanceRecord
	bills      map[string]models.BillSummary
	prints     map[string]models.PrintRecord
	users      map[string]models.User
	order      map[string]int
}

var _ repository.Store = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		clients:    make(map[string]models.Client),
		attendance: make(map[string]models.AttendanceRecord),
		bills:      make(map[string]models.BillSummary),
		prints:     make(map[string]models.PrintRecord),
		users:      make(map[string]models.User),
		order:      make(map[string]int),
	}
}

// nextID must be called with the write lock held.
func (s *Store) nextID(prefix string) string {
	s.seq++
	id := fmt.Sprintf("%s%06d", prefix, s.seq)
	s.order[id] = s.seq
	return id
}

func (s *Store) ensureID(id, prefix string) string {
	if id != "" {
		if _, ok := s.order[id]; !ok {
			s.seq++
			s.order[id] = s.seq
		}
		return id
	}
	return s.nextID(prefix)
}

func sortByInsertion[T any](s *Store, items []T, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return s.order[id(items[i])] < s.order[id(items[j])]
	})
}

func (s *Store) CreateClient(_ context.Context, client models.Client) (models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	client.ID = s.ensureID(client.ID, "cl")
	s.clients[client.ID] = client
	return client, nil
}

func (s *Store) GetClient(_ context.Context, id string) (models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[id]
	if !ok {
		return models.Client{}, repository.ErrNotFound
	}
	return c, nil
}

func (s *Store) ListClients(_ context.Context) ([]models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	sortByInsertion(s, out, func(c models.Client) string { return c.ID })
	return out, nil
}

func (s *Store) UpdateClient(_ context.Context, client models.Client) (models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[client.ID]; !ok {
		return models.Client{}, repository.ErrNotFound
	}
	s.clients[client.ID] = client
	return client, nil
}

func (s *Store) DeleteClient(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.clients, id)
	return nil
}

func (s *Store) CreateAttendance(_ context.Context, record models.AttendanceRecord) (models.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.ID = s.ensureID(record.ID, "at")
	s.attendance[record.ID] = record
	return record, nil
}

func (s *Store) GetAttendance(_ context.Context, id string) (models.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.attendance[id]
	if !ok {
		return models.AttendanceRecord{}, repository.ErrNotFound
	}
	return r, nil
}

func (s *Store) ListAttendance(_ context.Context, filter repository.AttendanceFilter) ([]models.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AttendanceRecord, 0)
	for _, r := range s.attendance {
		if filter.ClientID != "" && r.ClientID != filter.ClientID {
			continue
		}
		if filter.DatePrefix != "" && !strings.HasPrefix(strings.TrimSpace(r.Date), filter.DatePrefix) {
			continue
		}
		if filter.MealType != "" && r.MealType != filter.MealType {
			continue
		}
		out = append(out, r)
	}
	sortByInsertion(s, out, func(r models.AttendanceRecord) string { return r.ID })
	return out, nil
}

func (s *Store) UpdateAttendance(_ context.Context, record models.AttendanceRecord) (models.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attendance[record.ID]; !ok {
		return models.AttendanceRecord{}, repository.ErrNotFound
	}
	s.attendance[record.ID] = record
	return record, nil
}

func (s *Store) DeleteAttendance(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attendance[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.attendance, id)
	return nil
}

func (s *Store) CreateBill(_ context.Context, bill models.BillSummary) (models.BillSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bills {
		if b.Client.ID == bill.Client.ID && b.Month == bill.Month {
			return models.BillSummary{}, repository.ErrDuplicate
		}
	}
	bill.ID = s.ensureID(bill.ID, "bl")
	s.bills[bill.ID] = bill
	return bill, nil
}

func (s *Store) ListBills(_ context.Context, filter repository.BillFilter) ([]models.BillSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.BillSummary, 0)
	for _, b := range s.bills {
		if filter.ClientID != "" && b.Client.ID != filter.ClientID {
			continue
		}
		if filter.Month != "" && b.Month != filter.Month {
			continue
		}
		out = append(out, b)
	}
	sortByInsertion(s, out, func(b models.BillSummary) string { return b.ID })
	return out, nil
}

func (s *Store) FindBillByClientMonth(_ context.Context, clientID, month string) (models.BillSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bills {
		if b.Client.ID == clientID && b.Month == month {
			return b, nil
		}
	}
	return models.BillSummary{}, repository.ErrNotFound
}

func (s *Store) CreatePrint(_ context.Context, record models.PrintRecord) (models.PrintRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.ID = s.ensureID(record.ID, "pr")
	s.prints[record.ID] = record
	return record, nil
}

func (s *Store) ListPrints(_ context.Context) ([]models.PrintRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.PrintRecord, 0, len(s.prints))
	for _, p := range s.prints {
		out = append(out, p)
	}
	sortByInsertion(s, out, func(p models.PrintRecord) string { return p.ID })
	return out, nil
}

func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username {
			return models.User{}, repository.ErrDuplicate
		}
	}
	user.ID = s.ensureID(user.ID, "us")
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) FindUserByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sortByInsertion(s, out, func(u models.User) string { return u.ID })
	return out, nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }
