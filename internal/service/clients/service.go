// Package clients manages the subscriber roster.
package clients

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tiffinwala/tiffin/internal/domain/models"
	"github.com/tiffinwala/tiffin/internal/repository"
	"github.com/tiffinwala/tiffin/internal/service/validation"
)

// Service exposes client CRUD with validation.
type Service struct {
	repo   repository.ClientRepository
	logger *zap.Logger
}

// NewService wires a new client service instance.
func NewService(repo repository.ClientRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// List returns every client.
func (s *Service) List(ctx context.Context) ([]models.Client, error) {
	clients, err := s.repo.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

// Get returns one client or repository.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (models.Client, error) {
	return s.repo.GetClient(ctx, id)
}

// Create validates and stores a new client.
func (s *Service) Create(ctx context.Context, client models.Client) (models.Client, error) {
	client.ID = ""
	normalize(&client)
	if err := validation.Struct(client); err != nil {
		return models.Client{}, err
	}

	created, err := s.repo.CreateClient(ctx, client)
	if err != nil {
		return models.Client{}, fmt.Errorf("create client: %w", err)
	}
	s.logger.Info("client created", zap.String("client_id", created.ID), zap.String("name", created.Name))
	return created, nil
}

// Update replaces the stored client with id. Bills already generated keep
// their own snapshot of the old rates.
func (s *Service) Update(ctx context.Context, id string, client models.Client) (models.Client, error) {
	client.ID = id
	normalize(&client)
	if err := validation.Struct(client); err != nil {
		return models.Client{}, err
	}

	updated, err := s.repo.UpdateClient(ctx, client)
	if err != nil {
		return models.Client{}, fmt.Errorf("update client %s: %w", id, err)
	}
	s.logger.Info("client updated", zap.String("client_id", id))
	return updated, nil
}

// Delete removes the client. Its attendance and bills are left untouched.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteClient(ctx, id); err != nil {
		return fmt.Errorf("delete client %s: %w", id, err)
	}
	s.logger.Info("client deleted", zap.String("client_id", id))
	return nil
}

func normalize(c *models.Client) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Mobile = strings.TrimSpace(c.Mobile)
}
