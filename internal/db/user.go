package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/frotadev/fleet-manager/internal/models"
)

// ErrUserNotFound is returned when a lookup matches no dashboard account.
var ErrUserNotFound = errors.New("user not found")

// UserCollection is the persistence boundary for dashboard accounts.
type UserCollection interface {
	CreateUser(ctx context.Context, user models.User) error
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	ReplaceUser(ctx context.Context, id string, user models.User) error
	TouchLastLogin(ctx context.Context, id string) error
}

// MongoUserCollection stores dashboard accounts in a MongoDB collection.
type MongoUserCollection struct {
	Collection *mongo.Collection
}

// CreateUser inserts a new active account, stamping the audit times.
func (c *MongoUserCollection) CreateUser(ctx context.Context, user models.User) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.IsActive = true
	if _, err := c.Collection.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("create user %s: %w", user.Username, err)
	}
	return nil
}

// UserByID looks an account up by its hex object ID.
func (c *MongoUserCollection) UserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return c.findOne(ctx, bson.M{"_id": oid})
}

// UserByUsername looks an account up by username.
func (c *MongoUserCollection) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return c.findOne(ctx, bson.M{"username": username})
}

// UserByEmail looks an account up by email.
func (c *MongoUserCollection) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return c.findOne(ctx, bson.M{"email": email})
}

func (c *MongoUserCollection) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	var user models.User
	if err := c.Collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// ReplaceUser overwrites the stored account document and bumps UpdatedAt.
func (c *MongoUserCollection) ReplaceUser(ctx context.Context, id string, user models.User) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrUserNotFound
	}
	user.ID = oid
	user.UpdatedAt = time.Now()
	res, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": oid}, user)
	if err != nil {
		return fmt.Errorf("replace user %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// TouchLastLogin records a successful login on the account.
func (c *MongoUserCollection) TouchLastLogin(ctx context.Context, id string) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrUserNotFound
	}
	now := time.Now()
	_, err = c.Collection.UpdateOne(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"last_login": now, "updated_at": now}})
	if err != nil {
		return fmt.Errorf("touch last login for %s: %w", id, err)
	}
	return nil
}
