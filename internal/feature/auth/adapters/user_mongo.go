package adapters

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"rental_backend/internal/feature/auth/domain/entity"
	"rental_backend/internal/feature/auth/usecase"
)

const usersCollection = "users"

// userMongo is the MongoDB implementation of usecase.UserRepository.
type userMongo struct {
	coll *mongo.Collection
}

// Compile-time check to ensure userMongo implements UserRepository.
var _ usecase.UserRepository = (*userMongo)(nil)

// NewUserMongo creates a repository over the users collection of db.
func NewUserMongo(db *mongo.Database) *userMongo {
	return &userMongo{coll: db.Collection(usersCollection)}
}

// EnsureIndexes creates the unique email index. Without it two concurrent
// registrations with the same email could both succeed.
func (r *userMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	return err
}

// Create inserts u. A duplicate email yields usecase.ErrEmailAlreadyExists.
func (r *userMongo) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, u)
	return translateMongoError(err)
}

// FindByEmail returns usecase.ErrUserNotFound when no document matches.
func (r *userMongo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

// FindByID returns usecase.ErrUserNotFound when no document matches.
func (r *userMongo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *userMongo) findOne(ctx context.Context, filter bson.D) (*entity.User, error) {
	var u entity.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translateMongoError(err)
	}
	return &u, nil
}

// translateMongoError maps driver errors onto usecase sentinels.
func translateMongoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return usecase.ErrUserNotFound
	case mongo.IsDuplicateKeyError(err):
		return usecase.ErrEmailAlreadyExists
	default:
		return err
	}
}
