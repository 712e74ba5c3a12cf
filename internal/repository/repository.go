// Package repository declares the persistence operations the services rely on.
// The mongodb package backs them with MongoDB; the memory package keeps
// everything in process for tests and local runs.
package repository

import (
	"context"
	"errors"

	"github.com/tiffinwala/tiffin/internal/domain/models"
)

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a unique constraint rejected the write.
	ErrDuplicate = errors.New("duplicate key")
)

// AttendanceFilter narrows attendance listings. Empty fields match everything.
type AttendanceFilter struct {
	ClientID string
	// DatePrefix matches dates starting with it, e.g. "2024-05" or "2024-05-10".
	DatePrefix string
	MealType   models.MealType
}

// BillFilter narrows bill listings. Empty fields match everything.
type BillFilter struct {
	ClientID string
	Month    string
}

// ClientRepository stores the client roster.
type ClientRepository interface {
	CreateClient(ctx context.Context, client models.Client) (models.Client, error)
	GetClient(ctx context.Context, id string) (models.Client, error)
	ListClients(ctx context.Context) ([]models.Client, error)
	UpdateClient(ctx context.Context, client models.Client) (models.Client, error)
	DeleteClient(ctx context.Context, id string) error
}

// AttendanceRepository stores meal attendance.
type AttendanceRepository interface {
	CreateAttendance(ctx context.Context, record models.AttendanceRecord) (models.AttendanceRecord, error)
	GetAttendance(ctx context.Context, id string) (models.AttendanceRecord, error)
	ListAttendance(ctx context.Context, filter AttendanceFilter) ([]models.AttendanceRecord, error)
	UpdateAttendance(ctx context.Context, record models.AttendanceRecord) (models.AttendanceRecord, error)
	DeleteAttendance(ctx context.Context, id string) error
}

// BillRepository stores finalized bills.
type BillRepository interface {
	CreateBill(ctx context.Context, bill models.BillSummary) (models.BillSummary, error)
	ListBills(ctx context.Context, filter BillFilter) ([]models.BillSummary, error)
	FindBillByClientMonth(ctx context.Context, clientID, month string) (models.BillSummary, error)
}

// PrintRepository stores the print log.
type PrintRepository interface {
	CreatePrint(ctx context.Context, record models.PrintRecord) (models.PrintRecord, error)
	ListPrints(ctx context.Context) ([]models.PrintRecord, error)
}

// UserRepository stores administrator accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByUsername(ctx context.Context, username string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Store bundles every repository together with the connection lifecycle.
type Store interface {
	ClientRepository
	AttendanceRepository
	BillRepository
	PrintRepository
	UserRepository

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
