// Package mongo реализует хранилище пользователей в MongoDB.
//
// Идентификаторы назначает база (ObjectID), наружу они отдаются hex-строкой.
// Конкурентный доступ обеспечивает сама MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/magabrotheeeer/user-accounts/internal/models"
	"github.com/magabrotheeeer/user-accounts/internal/storage"
)

// collection подмножество *mongo.Collection, нужное хранилищу.
type collection interface {
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
	Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error)
	FindOneAndUpdate(ctx context.Context, filter any, update any, opts ...options.Lister[options.FindOneAndUpdateOptions]) *mongo.SingleResult
	FindOneAndDelete(ctx context.Context, filter any, opts ...options.Lister[options.FindOneAndDeleteOptions]) *mongo.SingleResult
}

// userDocument представление пользователя в коллекции.
type userDocument struct {
	ID         bson.ObjectID `bson:"_id,omitempty"`
	Username   string        `bson:"username"`
	Email      string        `bson:"email"`
	Gender     string        `bson:"gender"`
	Password   string        `bson:"password"`
	ProfilePic *string       `bson:"profilePic"`
	Documents  []string      `bson:"documents"`
}

func (d userDocument) toModel() *models.User {
	docs := d.Documents
	if docs == nil {
		docs = []string{}
	}
	return &models.User{
		ID:         d.ID.Hex(),
		Username:   d.Username,
		Email:      d.Email,
		Gender:     d.Gender,
		Password:   d.Password,
		ProfilePic: d.ProfilePic,
		Documents:  docs,
	}
}

// Storage хранилище пользователей поверх коллекции MongoDB.
type Storage struct {
	client *mongo.Client
	users  collection
}

// New подключается к MongoDB и проверяет соединение.
func New(ctx context.Context, uri, database, collectionName string) (*Storage, error) {
	const op = "storage.mongo.New"

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Storage{
		client: client,
		users:  client.Database(database).Collection(collectionName),
	}, nil
}

// EnsureIndexes создаёт уникальный индекс по email.
func (s *Storage) EnsureIndexes(ctx context.Context) error {
	const op = "storage.mongo.EnsureIndexes"
	coll, ok := s.users.(*mongo.Collection)
	if !ok {
		return nil
	}
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_unique"),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Ping проверяет доступность MongoDB.
func (s *Storage) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Ping(ctx, readpref.Primary())
}

// Close закрывает соединение с MongoDB.
func (s *Storage) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// Create сохраняет пользователя, ID назначает база.
func (s *Storage) Create(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.mongo.Create"
	doc := userDocument{
		Username:   user.Username,
		Email:      user.Email,
		Gender:     user.Gender,
		Password:   user.Password,
		ProfilePic: user.ProfilePic,
		Documents:  user.Documents,
	}
	if doc.Documents == nil {
		doc.Documents = []string{}
	}
	res, err := s.users.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrEmailTaken)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected inserted id type %T", op, res.InsertedID)
	}
	doc.ID = id
	return doc.toModel(), nil
}

// FindByID возвращает пользователя по hex-представлению ObjectID.
func (s *Storage) FindByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.mongo.FindByID"
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	return s.findOne(ctx, op, bson.M{"_id": oid})
}

// FindByUsernameOrEmail ищет по username или email, при нескольких совпадениях
// возвращает самого раннего по порядку вставки.
func (s *Storage) FindByUsernameOrEmail(ctx context.Context, value string) (*models.User, error) {
	const op = "storage.mongo.FindByUsernameOrEmail"
	return s.findOne(ctx, op, usernameOrEmailFilter(value))
}

// FindByEmail возвращает пользователя по почте.
func (s *Storage) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.mongo.FindByEmail"
	return s.findOne(ctx, op, bson.M{"email": email})
}

// Update применяет $set только для заданных полей.
func (s *Storage) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	const op = "storage.mongo.Update"
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	set := setDocument(upd)
	if len(set) == 0 {
		return s.findOne(ctx, op, bson.M{"_id": oid})
	}

	var doc userDocument
	err = s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return doc.toModel(), nil
}

// Delete удаляет пользователя и возвращает удалённую запись.
func (s *Storage) Delete(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.mongo.Delete"
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	var doc userDocument
	if err := s.users.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return doc.toModel(), nil
}

// List возвращает всех пользователей в порядке вставки.
func (s *Storage) List(ctx context.Context) ([]models.User, error) {
	const op = "storage.mongo.List"
	cur, err := s.users.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, *d.toModel())
	}
	return users, nil
}

func (s *Storage) findOne(ctx context.Context, op string, filter any) (*models.User, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return doc.toModel(), nil
}

func usernameOrEmailFilter(value string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"username": value},
		bson.M{"email": value},
	}}
}

func setDocument(upd models.UserUpdate) bson.D {
	set := bson.D{}
	if upd.Username != nil {
		set = append(set, bson.E{Key: "username", Value: *upd.Username})
	}
	if upd.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *upd.Email})
	}
	if upd.Gender != nil {
		set = append(set, bson.E{Key: "gender", Value: *upd.Gender})
	}
	if upd.Password != nil {
		set = append(set, bson.E{Key: "password", Value: *upd.Password})
	}
	return set
}

func mapError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return storage.ErrUserNotFound
	case mongo.IsDuplicateKeyError(err):
		return storage.ErrEmailTaken
	default:
		return err
	}
}
