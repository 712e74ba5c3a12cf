package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tiffinwala/tiffin/internal/domain/models"
)

// CreateClient inserts a client and returns it with its id.
func (s *Store) CreateClient(ctx context.Context, client models.Client) (models.Client, error) {
	if client.ID == "" {
		client.ID = newID()
	}
	if _, err := s.collection(clientsCollection).InsertOne(ctx, client); err != nil {
		return models.Client{}, fmt.Errorf("failed to insert client: %w", err)
	}
	return client, nil
}

// GetClient fetches one client by id.
func (s *Store) GetClient(ctx context.Context, id string) (models.Client, error) {
	c, err := findOne[models.Client](ctx, s.collection(clientsCollection), idFilter(id))
	if err != nil {
		return models.Client{}, fmt.Errorf("failed to find client %s: %w", id, err)
	}
	return c, nil
}

// ListClients returns every client ordered by name.
func (s *Store) ListClients(ctx context.Context) ([]models.Client, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	clients, err := findAll[models.Client](ctx, s.collection(clientsCollection), bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch clients: %w", err)
	}
	return clients, nil
}

// UpdateClient overwrites the editable fields of a client.
func (s *Store) UpdateClient(ctx context.Context, client models.Client) (models.Client, error) {
	if err := replaceFields(ctx, s.collection(clientsCollection), client.ID, client); err != nil {
		return models.Client{}, fmt.Errorf("failed to update client %s: %w", client.ID, err)
	}
	return client, nil
}

// DeleteClient removes a client. Attendance is left untouched.
func (s *Store) DeleteClient(ctx context.Context, id string) error {
	if err := deleteByID(ctx, s.collection(clientsCollection), id); err != nil {
		return fmt.Errorf("failed to delete client %s: %w", id, err)
	}
	return nil
}
