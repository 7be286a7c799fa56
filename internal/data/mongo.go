package data

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DefaultMongoDatabase is used when no database name is configured.
const DefaultMongoDatabase = "taskmanager"

const (
	usersEmailIndex    = "users_email_key"
	usersUsernameIndex = "users_username_key"
)

type (
	// MongoStore is a Store backed by the "users" and "tasks" collections of
	// a MongoDB database.
	MongoStore struct {
		client *mongo.Client
		users  *mongo.Collection
		tasks  *mongo.Collection
	}

	userDocument struct {
		ID        primitive.ObjectID `bson:"_id,omitempty"`
		Username  string             `bson:"username"`
		Email     string             `bson:"email"`
		Password  string             `bson:"password"`
		CreatedAt time.Time          `bson:"createdAt"`
	}

	taskDocument struct {
		ID        primitive.ObjectID `bson:"_id,omitempty"`
		User      primitive.ObjectID `bson:"user"`
		Title     string             `bson:"title"`
		Completed bool               `bson:"completed"`
	}
)

func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	connectCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	err = client.Ping(connectCtx, readpref.Primary())
	if err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client: client,
		users:  db.Collection("users"),
		tasks:  db.Collection("tasks"),
	}
	err = s.ensureIndexes(connectCtx)
	if err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// ensureIndexes creates the unique indexes that make the registration
// uniqueness check authoritative.
func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(usersEmailIndex),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(usersUsernameIndex),
		},
	})
	if err != nil {
		return fmt.Errorf("create users indexes: %w", err)
	}
	_, err = s.tasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create tasks indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) InsertUser(ctx context.Context, u *User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	doc := userDocument{
		ID:        primitive.NewObjectID(),
		Username:  u.Username,
		Email:     u.Email,
		Password:  string(u.PasswordHash),
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.users.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			switch {
			case strings.Contains(err.Error(), usersEmailIndex):
				return ErrDuplicateEmail
			case strings.Contains(err.Error(), usersUsernameIndex):
				return ErrDuplicateUsername
			}
		}
		return err
	}
	u.ID = doc.ID.Hex()
	return nil
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *MongoStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.findUser(ctx, bson.M{"username": username})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var doc userDocument
	err := s.users.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}
	return &User{
		ID:           doc.ID.Hex(),
		Username:     doc.Username,
		Email:        doc.Email,
		PasswordHash: []byte(doc.Password),
	}, nil
}

func (s *MongoStore) ListTasksByOwner(ctx context.Context, userID string) ([]Task, error) {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []Task{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cur, err := s.tasks.Find(ctx, bson.M{"user": owner})
	if err != nil {
		return nil, err
	}
	var docs []taskDocument
	err = cur.All(ctx, &docs)
	if err != nil {
		return nil, err
	}
	tasks := make([]Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.toTask())
	}
	return tasks, nil
}

func (s *MongoStore) InsertTask(ctx context.Context, t *Task) error {
	owner, err := primitive.ObjectIDFromHex(t.UserID)
	if err != nil {
		return fmt.Errorf("invalid owner id %q: %w", t.UserID, err)
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	doc := taskDocument{
		ID:        primitive.NewObjectID(),
		User:      owner,
		Title:     t.Title,
		Completed: t.Completed,
	}
	_, err = s.tasks.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	t.ID = doc.ID.Hex()
	return nil
}

func (s *MongoStore) GetTask(ctx context.Context, id string) (*Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var doc taskDocument
	err = s.tasks.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}
	t := doc.toTask()
	return &t, nil
}

func (s *MongoStore) UpdateTask(ctx context.Context, t *Task) error {
	oid, err := primitive.ObjectIDFromHex(t.ID)
	if err != nil {
		return ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := s.tasks.UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{"title": t.Title, "completed": t.Completed},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteTask(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := s.tasks.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (d taskDocument) toTask() Task {
	return Task{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Completed: d.Completed,
		UserID:    d.User.Hex(),
	}
}

var _ Store = (*MongoStore)(nil)
