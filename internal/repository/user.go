package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/deppfellow/userapi/internal/model"
)

// UserFilter narrows Find. The zero value matches every user.
type UserFilter struct {
	// ID, when set, matches the user with that hex ObjectID.
	ID string
}

// UserRepository stores users in a MongoDB collection.
//
// Identifiers that are not valid ObjectIDs cannot match any document, so they
// are treated as "no match" rather than as errors.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(coll *mongo.Collection) *UserRepository {
	return &UserRepository{coll: coll}
}

// Find returns the users matching filter. The result is never nil.
func (r *UserRepository) Find(ctx context.Context, filter UserFilter) ([]model.User, error) {
	query := bson.M{}
	if filter.ID != "" {
		id, err := primitive.ObjectIDFromHex(filter.ID)
		if err != nil {
			return []model.User{}, nil
		}
		query["_id"] = id
	}

	cursor, err := r.coll.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}

	users := []model.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// Insert stores a new user and returns it with the storage assigned ID.
func (r *UserRepository) Insert(ctx context.Context, user *model.User) (*model.User, error) {
	doc := *user
	doc.ID = primitive.NilObjectID

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert user: unexpected id type %T", res.InsertedID)
	}
	doc.ID = id
	return &doc, nil
}

// UpdateByID merges patch into the user with the given ID and returns the
// updated document. It returns nil, nil when no user matches.
func (r *UserRepository) UpdateByID(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	filter := bson.M{"_id": oid}

	// $set with no fields is rejected by the server.
	if patch.IsEmpty() {
		return r.findOne(ctx, filter)
	}

	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Age != nil {
		set["age"] = *patch.Age
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user model.User
	err = r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &user, nil
}

// DeleteByID removes the user with the given ID and reports whether a
// document was removed. Deleting a user that does not exist is not an error.
func (r *UserRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	err := r.coll.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}
