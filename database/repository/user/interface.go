package userRepo

import (
	"context"
	"errors"

	"serbisyo/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no user matches the given ID.
var ErrNotFound = errors.New("user not found")

// UserRepository exposes the read-only slice of the user collection the
// payment core needs.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type mongoUserRepo struct {
	coll *mongo.Collection
}

// NewMongoUserRepo returns a UserRepository backed by MongoDB.
func NewMongoUserRepo(db *mongo.Database) UserRepository {
	return &mongoUserRepo{coll: db.Collection("users")}
}
