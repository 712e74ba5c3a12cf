package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tiffinwala/tiffin/internal/domain/models"
)

// CreatePrint appends a print log entry.
func (s *Store) CreatePrint(ctx context.Context, record models.PrintRecord) (models.PrintRecord, error) {
	if record.ID == "" {
		record.ID = newID()
	}
	if _, err := s.collection(printsCollection).InsertOne(ctx, record); err != nil {
		return models.PrintRecord{}, fmt.Errorf("failed to insert print: %w", err)
	}
	return record, nil
}

// ListPrints returns the print log, newest first.
func (s *Store) ListPrints(ctx context.Context) ([]models.PrintRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "printDate", Value: -1}})
	prints, err := findAll[models.PrintRecord](ctx, s.collection(printsCollection), bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prints: %w", err)
	}
	return prints, nil
}
