package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/deppfellow/userapi/internal/model"
)

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func userDoc(id primitive.ObjectID, name string, age float64) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: name},
		{Key: "age", Value: age},
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestUserRepository_Find(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("all users", func(mt *mtest.T) {
		alice, bob := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			userDoc(alice, "Alice", 30),
			userDoc(bob, "Bob", 41.5),
		))

		users, err := NewUserRepository(mt.Coll).Find(ctx, UserFilter{})
		require.NoError(mt, err)
		require.Len(mt, users, 2)
		assert.Equal(mt, model.User{ID: alice, Name: "Alice", Age: 30}, users[0])
		assert.Equal(mt, 41.5, users[1].Age)
	})

	mt.Run("empty collection returns empty slice", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		users, err := NewUserRepository(mt.Coll).Find(ctx, UserFilter{})
		require.NoError(mt, err)
		assert.NotNil(mt, users)
		assert.Empty(mt, users)
	})

	mt.Run("by id", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			userDoc(id, "Alice", 30),
		))

		users, err := NewUserRepository(mt.Coll).Find(ctx, UserFilter{ID: id.Hex()})
		require.NoError(mt, err)
		require.Len(mt, users, 1)
		assert.Equal(mt, id, users[0].ID)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "find", started.CommandName)
		filter := started.Command.Lookup("filter").Document()
		assert.Equal(mt, id, filter.Lookup("_id").ObjectID())
	})

	mt.Run("malformed id matches nothing without a round trip", func(mt *mtest.T) {
		users, err := NewUserRepository(mt.Coll).Find(ctx, UserFilter{ID: "not-an-id"})
		require.NoError(mt, err)
		assert.Empty(mt, users)
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("command error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized on userapi",
		}))

		users, err := NewUserRepository(mt.Coll).Find(ctx, UserFilter{})
		require.Error(mt, err)
		assert.Nil(mt, users)

		var cmdErr mongo.CommandError
		require.ErrorAs(mt, err, &cmdErr)
		assert.Equal(mt, int32(13), cmdErr.Code)
	})
}

func TestUserRepository_Insert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("assigns id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		in := &model.User{Name: "Alice", Age: 30}
		user, err := NewUserRepository(mt.Coll).Insert(ctx, in)
		require.NoError(mt, err)
		assert.False(mt, user.ID.IsZero())
		assert.Equal(mt, "Alice", user.Name)
		assert.Equal(mt, float64(30), user.Age)
		assert.True(mt, in.ID.IsZero(), "input must not be mutated")
	})

	mt.Run("client supplied id is ignored", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		fixed := primitive.NewObjectID()
		user, err := NewUserRepository(mt.Coll).Insert(ctx, &model.User{ID: fixed, Name: "Bob"})
		require.NoError(mt, err)
		assert.NotEqual(mt, fixed, user.ID)
	})

	mt.Run("write error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		user, err := NewUserRepository(mt.Coll).Insert(ctx, &model.User{Name: "Alice", Age: 30})
		require.Error(mt, err)
		assert.Nil(mt, user)
		assert.True(mt, mongo.IsDuplicateKeyError(err))
	})
}

func TestUserRepository_UpdateByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("returns updated document", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: userDoc(id, "Alice", 31)},
		))

		user, err := NewUserRepository(mt.Coll).UpdateByID(ctx, id.Hex(), model.UserPatch{Age: ptr(31.0)})
		require.NoError(mt, err)
		require.NotNil(mt, user)
		assert.Equal(mt, model.User{ID: id, Name: "Alice", Age: 31}, *user)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "findAndModify", started.CommandName)
		set := started.Command.Lookup("update").Document().Lookup("$set").Document()
		assert.Equal(mt, 31.0, set.Lookup("age").Double())
		_, err = set.LookupErr("name")
		assert.Error(mt, err, "absent fields must not be written")
	})

	mt.Run("no match", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user, err := NewUserRepository(mt.Coll).UpdateByID(ctx, primitive.NewObjectID().Hex(), model.UserPatch{Name: ptr("Zed")})
		require.NoError(mt, err)
		assert.Nil(mt, user)
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		user, err := NewUserRepository(mt.Coll).UpdateByID(ctx, "xyz", model.UserPatch{Name: ptr("Zed")})
		require.NoError(mt, err)
		assert.Nil(mt, user)
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("empty patch reads current document", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			userDoc(id, "Alice", 30),
		))

		user, err := NewUserRepository(mt.Coll).UpdateByID(ctx, id.Hex(), model.UserPatch{})
		require.NoError(mt, err)
		require.NotNil(mt, user)
		assert.Equal(mt, "Alice", user.Name)
		assert.Equal(mt, "find", mt.GetStartedEvent().CommandName)
	})

	mt.Run("command error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad update",
		}))

		user, err := NewUserRepository(mt.Coll).UpdateByID(ctx, primitive.NewObjectID().Hex(), model.UserPatch{Name: ptr("Zed")})
		require.Error(mt, err)
		assert.Nil(mt, user)
	})
}

func TestUserRepository_DeleteByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("deletes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		id := primitive.NewObjectID()
		deleted, err := NewUserRepository(mt.Coll).DeleteByID(ctx, id.Hex())
		require.NoError(mt, err)
		assert.True(mt, deleted)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "delete", started.CommandName)
	})

	mt.Run("nothing matched is not an error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		deleted, err := NewUserRepository(mt.Coll).DeleteByID(ctx, primitive.NewObjectID().Hex())
		require.NoError(mt, err)
		assert.False(mt, deleted)
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		deleted, err := NewUserRepository(mt.Coll).DeleteByID(ctx, "12")
		require.NoError(mt, err)
		assert.False(mt, deleted)
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("write error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    50,
			Message: "operation exceeded time limit",
		}))

		deleted, err := NewUserRepository(mt.Coll).DeleteByID(ctx, primitive.NewObjectID().Hex())
		require.Error(mt, err)
		assert.False(mt, deleted)
		var we mongo.WriteException
		assert.ErrorAs(mt, err, &we)
	})
}
