package store

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// accessors bridge generic repository code to concrete record fields.
type accessors[T any] struct {
	id     func(T) string
	withID func(T, string) T
	stamp  func(T, time.Time) T
	// dedupe builds the uniqueness filter for Exists. Nil disables dedupe
	// and makes Add insert unconditionally.
	dedupe func(T) bson.D
}

// MongoRepository implements Repository backed by one mongo collection.
type MongoRepository[T any] struct {
	coll *mongo.Collection
	acc  accessors[T]
}

// NewSubscriptionRepository returns a mongo-backed subscription store.
// Uniqueness key: target + callback URL.
func NewSubscriptionRepository(db *mongo.Database) *MongoRepository[Subscription] {
	return &MongoRepository[Subscription]{
		coll: db.Collection("subscription"),
		acc: accessors[Subscription]{
			id:     func(s Subscription) string { return s.ID },
			withID: func(s Subscription, id string) Subscription { s.ID = id; return s },
			stamp: func(s Subscription, now time.Time) Subscription {
				if s.CreatedAt.IsZero() {
					s.CreatedAt = now
				}
				return s
			},
			dedupe: func(s Subscription) bson.D {
				return bson.D{
					{Key: "target", Value: s.Target},
					{Key: "callback_url", Value: s.CallbackURL},
				}
			},
		},
	}
}

// NewPublicationRepository returns a mongo-backed publication store.
// Uniqueness key: target alone.
func NewPublicationRepository(db *mongo.Database) *MongoRepository[Publication] {
	return &MongoRepository[Publication]{
		coll: db.Collection("publication"),
		acc: accessors[Publication]{
			id:     func(p Publication) string { return p.ID },
			withID: func(p Publication, id string) Publication { p.ID = id; return p },
			stamp: func(p Publication, now time.Time) Publication {
				if p.CreatedAt.IsZero() {
					p.CreatedAt = now
				}
				return p
			},
			dedupe: func(p Publication) bson.D {
				return bson.D{{Key: "target", Value: p.Target}}
			},
		},
	}
}

// Add persists the record, skipping insertion when a record with the same
// uniqueness key already exists.
func (r *MongoRepository[T]) Add(ctx context.Context, item T) (string, error) {
	if r.acc.dedupe != nil {
		existing, err := r.Exists(ctx, item)
		if err != nil {
			return "", err
		}
		if existing != nil {
			return r.acc.id(*existing), nil
		}
	}

	if r.acc.id(item) == "" {
		item = r.acc.withID(item, uuid.NewString())
	}
	item = r.acc.stamp(item, time.Now())

	if _, err := r.coll.InsertOne(ctx, item); err != nil {
		return "", errors.Join(ErrAddFailed, err)
	}
	return r.acc.id(item), nil
}

// GetAll streams the full collection through a mongo cursor. The sequence
// is one-shot; range over a fresh call to re-read.
func (r *MongoRepository[T]) GetAll(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		cursor, err := r.coll.Find(ctx, bson.D{})
		if err != nil {
			yield(zero, errors.Join(ErrQueryFailed, err))
			return
		}
		defer func() { _ = cursor.Close(ctx) }()

		for cursor.Next(ctx) {
			var item T
			if err := cursor.Decode(&item); err != nil {
				if !yield(zero, fmt.Errorf("decode record: %w", err)) {
					return
				}
				continue
			}
			if !yield(item, nil) {
				return
			}
		}

		if err := cursor.Err(); err != nil {
			yield(zero, errors.Join(ErrQueryFailed, err))
		}
	}
}

// Exists looks up a record by the item's uniqueness key. Returns nil when
// no match is stored or the record kind has no dedupe key.
func (r *MongoRepository[T]) Exists(ctx context.Context, item T) (*T, error) {
	if r.acc.dedupe == nil {
		return nil, nil
	}

	var found T
	err := r.coll.FindOne(ctx, r.acc.dedupe(item)).Decode(&found)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return &found, nil
}
