package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tiffinwala/tiffin/internal/domain/models"
	"github.com/tiffinwala/tiffin/internal/repository"
)

// CreateUser inserts an administrator.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if user.ID == "" {
		user.ID = newID()
	}
	if _, err := s.collection(usersCollection).InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, repository.ErrDuplicate
		}
		return models.User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

// FindUserByUsername looks up an administrator by login name.
func (s *Store) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	user, err := findOne[models.User](ctx, s.collection(usersCollection), bson.M{"username": username})
	if err != nil {
		return models.User{}, fmt.Errorf("failed to find user %s: %w", username, err)
	}
	return user, nil
}

// ListUsers returns every administrator.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := findAll[models.User](ctx, s.collection(usersCollection), bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, nil
}
