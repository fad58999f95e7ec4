package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unidet/portal/internal/core/ports"
)

const sessionCollection = "session_entries"

type sessionEntry struct {
	Client    string `bson:"client"`
	Key       string `bson:"key"`
	Value     string `bson:"value"`
	UpdatedAt int64  `bson:"updated_at"`
}

// Namespaces stores every client's entries as one document per key.
type Namespaces struct {
	col *mongo.Collection
	now func() time.Time
}

func NewNamespaces(db *mongo.Database) *Namespaces {
	return &Namespaces{col: db.Collection(sessionCollection), now: time.Now}
}

// EnsureIndexes creates the unique client+key index.
func (n *Namespaces) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "client", Value: 1}, {Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "updated_at", Value: 1}}},
	}
	_, err := n.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (n *Namespaces) Namespace(clientID string) ports.KeyValueStore {
	return &KVStore{ns: n, client: clientID}
}

// KVStore is the view of Namespaces restricted to one client.
type KVStore struct {
	ns     *Namespaces
	client string
}

func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var e sessionEntry
	err := s.ns.col.FindOne(ctx, bson.M{"client": s.client, "key": key}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find session entry: %w", err)
	}
	return e.Value, true, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"client": s.client, "key": key}
	update := bson.M{"$set": sessionEntry{
		Client:    s.client,
		Key:       key,
		Value:     value,
		UpdatedAt: s.ns.now().Unix(),
	}}
	if _, err := s.ns.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("upsert session entry: %w", err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"client": s.client, "key": bson.M{"$in": keys}}
	if _, err := s.ns.col.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("delete session entries: %w", err)
	}
	return nil
}
