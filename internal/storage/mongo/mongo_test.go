package mongo

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/magabrotheeeer/user-accounts/internal/models"
	"github.com/magabrotheeeer/user-accounts/internal/storage"
)

type collectionMock struct {
	mock.Mock
}

func (m *collectionMock) InsertOne(ctx context.Context, document any, _ ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error) {
	args := m.Called(ctx, document)
	res, _ := args.Get(0).(*mongo.InsertOneResult)
	return res, args.Error(1)
}

func (m *collectionMock) FindOne(ctx context.Context, filter any, _ ...options.Lister[options.FindOneOptions]) *mongo.SingleResult {
	args := m.Called(ctx, filter)
	return args.Get(0).(*mongo.SingleResult)
}

func (m *collectionMock) Find(ctx context.Context, filter any, _ ...options.Lister[options.FindOptions]) (*mongo.Cursor, error) {
	args := m.Called(ctx, filter)
	cur, _ := args.Get(0).(*mongo.Cursor)
	return cur, args.Error(1)
}

func (m *collectionMock) FindOneAndUpdate(ctx context.Context, filter any, update any, _ ...options.Lister[options.FindOneAndUpdateOptions]) *mongo.SingleResult {
	args := m.Called(ctx, filter, update)
	return args.Get(0).(*mongo.SingleResult)
}

func (m *collectionMock) FindOneAndDelete(ctx context.Context, filter any, _ ...options.Lister[options.FindOneAndDeleteOptions]) *mongo.SingleResult {
	args := m.Called(ctx, filter)
	return args.Get(0).(*mongo.SingleResult)
}

func found(doc userDocument) *mongo.SingleResult {
	return mongo.NewSingleResultFromDocument(doc, nil, nil)
}

func notFound() *mongo.SingleResult {
	return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
}

func strPtr(s string) *string { return &s }

func TestStorage_Create(t *testing.T) {
	coll := new(collectionMock)
	s := &Storage{users: coll}
	oid := bson.NewObjectID()

	coll.On("InsertOne", mock.Anything, mock.MatchedBy(func(d userDocument) bool {
		return d.ID.IsZero() && d.Email == "a@x.com" && d.Password == "hash" && d.Documents != nil
	})).Return(&mongo.InsertOneResult{InsertedID: oid}, nil).Once()

	got, err := s.Create(context.Background(), models.User{Username: "amy", Email: "a@x.com", Password: "hash"})
	require.NoError(t, err)
	assert.Equal(t, oid.Hex(), got.ID)
	assert.Equal(t, "amy", got.Username)
	assert.Equal(t, []string{}, got.Documents)
	coll.AssertExpectations(t)
}

func TestStorage_CreateDuplicate(t *testing.T) {
	coll := new(collectionMock)
	s := &Storage{users: coll}

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	coll.On("InsertOne", mock.Anything, mock.Anything).Return(nil, dup).Once()

	_, err := s.Create(context.Background(), models.User{Email: "a@x.com"})
	assert.ErrorIs(t, err, storage.ErrEmailTaken)
}

func TestStorage_FindByID(t *testing.T) {
	oid := bson.NewObjectID()
	doc := userDocument{ID: oid, Username: "amy", Email: "a@x.com", Gender: "f", Password: "hash", ProfilePic: strPtr("p.png")}

	tests := []struct {
		name    string
		id      string
		setup   func(c *collectionMock)
		wantErr error
	}{
		{
			name: "found",
			id:   oid.Hex(),
			setup: func(c *collectionMock) {
				c.On("FindOne", mock.Anything, bson.M{"_id": oid}).Return(found(doc)).Once()
			},
		},
		{
			name: "not found",
			id:   oid.Hex(),
			setup: func(c *collectionMock) {
				c.On("FindOne", mock.Anything, bson.M{"_id": oid}).Return(notFound()).Once()
			},
			wantErr: storage.ErrUserNotFound,
		},
		{
			name:    "malformed id",
			id:      "not-an-object-id",
			setup:   func(_ *collectionMock) {},
			wantErr: storage.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coll := new(collectionMock)
			tt.setup(coll)
			s := &Storage{users: coll}

			got, err := s.FindByID(context.Background(), tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, oid.Hex(), got.ID)
				assert.Equal(t, "hash", got.Password)
				assert.Equal(t, "p.png", *got.ProfilePic)
			}
			coll.AssertExpectations(t)
		})
	}
}

func TestStorage_FindByUsernameOrEmail(t *testing.T) {
	coll := new(collectionMock)
	s := &Storage{users: coll}
	oid := bson.NewObjectID()

	coll.On("FindOne", mock.Anything, usernameOrEmailFilter("a@x.com")).
		Return(found(userDocument{ID: oid, Username: "amy", Email: "a@x.com"})).Once()

	got, err := s.FindByUsernameOrEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, oid.Hex(), got.ID)
	coll.AssertExpectations(t)
}

func TestStorage_List(t *testing.T) {
	coll := new(collectionMock)
	s := &Storage{users: coll}
	first, second := bson.NewObjectID(), bson.NewObjectID()

	cur, err := mongo.NewCursorFromDocuments([]any{
		userDocument{ID: first, Username: "amy", Email: "a@x.com", Password: "hash"},
		userDocument{ID: second, Username: "bob", Email: "b@x.com", Documents: []string{"b.pdf"}},
	}, nil, nil)
	require.NoError(t, err)
	coll.On("Find", mock.Anything, bson.D{}).Return(cur, nil).Once()

	got, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.Hex(), got[0].ID)
	assert.Equal(t, []string{}, got[0].Documents)
	assert.Equal(t, second.Hex(), got[1].ID)
	assert.Equal(t, []string{"b.pdf"}, got[1].Documents)
	coll.AssertExpectations(t)
}

func TestStorage_ListError(t *testing.T) {
	coll := new(collectionMock)
	s := &Storage{users: coll}

	coll.On("Find", mock.Anything, bson.D{}).Return(nil, errors.New("server selection timeout")).Once()

	_, err := s.List(context.Background())
	assert.ErrorContains(t, err, "storage.mongo.List")
}

func TestUsernameOrEmailFilter(t *testing.T) {
	f := usernameOrEmailFilter("amy")
	or, ok := f["$or"].(bson.A)
	require.True(t, ok)
	assert.Equal(t, bson.A{bson.M{"username": "amy"}, bson.M{"email": "amy"}}, or)
}

func TestSetDocument(t *testing.T) {
	assert.Empty(t, setDocument(models.UserUpdate{}))

	set := setDocument(models.UserUpdate{Gender: strPtr("X"), Password: strPtr("newhash")})
	assert.Equal(t, bson.D{{Key: "gender", Value: "X"}, {Key: "password", Value: "newhash"}}, set)
}

func TestStorage_Update(t *testing.T) {
	coll := new(collectionMock)
	s := &Storage{users: coll}
	oid := bson.NewObjectID()

	coll.On("FindOneAndUpdate", mock.Anything, bson.M{"_id": oid},
		bson.D{{Key: "$set", Value: bson.D{{Key: "gender", Value: "X"}}}}).
		Return(found(userDocument{ID: oid, Username: "amy", Gender: "X"})).Once()

	got, err := s.Update(context.Background(), oid.Hex(), models.UserUpdate{Gender: strPtr("X")})
	require.NoError(t, err)
	assert.Equal(t, "X", got.Gender)
	assert.Equal(t, "amy", got.Username)
	coll.AssertExpectations(t)
}

func TestStorage_UpdateNotFound(t *testing.T) {
	coll := new(collectionMock)
	s := &Storage{users: coll}
	oid := bson.NewObjectID()

	coll.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything).Return(notFound()).Once()

	_, err := s.Update(context.Background(), oid.Hex(), models.UserUpdate{Gender: strPtr("X")})
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestStorage_Delete(t *testing.T) {
	coll := new(collectionMock)
	s := &Storage{users: coll}
	oid := bson.NewObjectID()

	coll.On("FindOneAndDelete", mock.Anything, bson.M{"_id": oid}).
		Return(found(userDocument{ID: oid, Username: "amy"})).Once()
	coll.On("FindOneAndDelete", mock.Anything, bson.M{"_id": oid}).
		Return(notFound()).Once()

	removed, err := s.Delete(context.Background(), oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid.Hex(), removed.ID)

	_, err = s.Delete(context.Background(), oid.Hex())
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
	coll.AssertExpectations(t)
}

// Интеграционный тест, запускается только при заданном MONGO_URI.
func TestStorage_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI is not set")
	}
	ctx := context.Background()
	dbName := "accounts_test_" + bson.NewObjectID().Hex()

	s, err := New(ctx, uri, dbName, "users")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.client.Database(dbName).Drop(context.Background())
		_ = s.Close(context.Background())
	})
	require.NoError(t, s.EnsureIndexes(ctx))

	first, err := s.Create(ctx, models.User{Username: "shared", Email: "a@x.com", Password: "hash"})
	require.NoError(t, err)
	_, err = s.Create(ctx, models.User{Username: "shared", Email: "b@x.com", Password: "hash"})
	require.NoError(t, err)

	_, err = s.Create(ctx, models.User{Username: "dup", Email: "a@x.com", Password: "hash"})
	assert.ErrorIs(t, err, storage.ErrEmailTaken)

	got, err := s.FindByUsernameOrEmail(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)

	updated, err := s.Update(ctx, first.ID, models.UserUpdate{Gender: strPtr("X")})
	require.NoError(t, err)
	assert.Equal(t, "X", updated.Gender)
	assert.Equal(t, "hash", updated.Password)

	_, err = s.Delete(ctx, first.ID)
	require.NoError(t, err)
	_, err = s.FindByID(ctx, first.ID)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}
