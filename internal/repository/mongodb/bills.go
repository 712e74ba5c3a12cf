package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tiffinwala/tiffin/internal/domain/models"
	"github.com/tiffinwala/tiffin/internal/repository"
)

// CreateBill inserts a finalized bill. The unique (client, month) index turns
// a concurrent second insert into repository.ErrDuplicate.
func (s *Store) CreateBill(ctx context.Context, bill models.BillSummary) (models.BillSummary, error) {
	if bill.ID == "" {
		bill.ID = newID()
	}
	if _, err := s.collection(billsCollection).InsertOne(ctx, bill); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.BillSummary{}, repository.ErrDuplicate
		}
		return models.BillSummary{}, fmt.Errorf("failed to insert bill: %w", err)
	}
	return bill, nil
}

// ListBills returns bills matching filter, newest month first.
func (s *Store) ListBills(ctx context.Context, filter repository.BillFilter) ([]models.BillSummary, error) {
	query := bson.M{}
	if filter.ClientID != "" {
		query["client._id"] = filter.ClientID
	}
	if filter.Month != "" {
		query["month"] = filter.Month
	}

	opts := options.Find().SetSort(bson.D{{Key: "month", Value: -1}, {Key: "client.name", Value: 1}})
	bills, err := findAll[models.BillSummary](ctx, s.collection(billsCollection), query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bills: %w", err)
	}
	return bills, nil
}

// FindBillByClientMonth is the indexed lookup behind the duplicate guard.
func (s *Store) FindBillByClientMonth(ctx context.Context, clientID, month string) (models.BillSummary, error) {
	bill, err := findOne[models.BillSummary](ctx, s.collection(billsCollection), bson.M{"client._id": clientID, "month": month})
	if err != nil {
		return models.BillSummary{}, fmt.Errorf("failed to find bill for %s in %s: %w", clientID, month, err)
	}
	return bill, nil
}
