// Package mongodb implements the like store on MongoDB.
//
// Ledger and counter writes run in multi-document transactions, so the
// deployment must be a replica set or a sharded cluster.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
)

const (
	likesCollection       = "likes_like"
	countersCollection    = "likes_likes"
	entityTypesCollection = "like_entity_types"
	sequencesCollection   = "like_sequences"
)

var _ contract.ILikeStore = (*Store)(nil)

type Store struct {
	client *mongo.Client
	db     *mongo.Database

	likes    *LikeRepository
	counters *LikeCounterRepository
	types    *EntityTypeRepository
	users    *UserRepository
}

// NewStore builds a store over db and makes sure the unique indexes the
// ledger relies on exist. usersCollection names the host user collection.
func NewStore(ctx context.Context, client *mongo.Client, dbName, usersCollection string) (*Store, error) {
	db := client.Database(dbName)
	s := &Store{
		client:   client,
		db:       db,
		likes:    NewLikeRepository(db),
		counters: NewLikeCounterRepository(db),
		types:    NewEntityTypeRepository(db),
		users:    NewUserRepository(db.Collection(usersCollection)),
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Likes() contract.ILikeRepository             { return s.likes }
func (s *Store) Counters() contract.ILikeCounterRepository   { return s.counters }
func (s *Store) EntityTypes() contract.IEntityTypeRepository { return s.types }
func (s *Store) Users() contract.IUserRepository             { return s.users }

// UpsertUser stores a host user record.
func (s *Store) UpsertUser(ctx context.Context, u entity.User) error {
	return s.users.UpsertUser(ctx, u)
}

// Close leaves the client open; its owner disconnects it.
func (s *Store) Close(ctx context.Context) error {
	return nil
}

// WithinTx runs fn inside a session transaction. The session travels in the
// context handed to fn, so the ordinary repositories join the transaction.
// Transient transaction errors are retried by the driver, which may run fn
// more than once.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx contract.ITxRepositories) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("starting session: %w", classify(err))
	}
	defer session.EndSession(context.WithoutCancel(ctx))

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, s)
	})
	if err != nil {
		return classify(err)
	}
	return nil
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		likesCollection: {
			{
				Keys:    bson.D{{Key: "entity_type_id", Value: 1}, {Key: "entity_id", Value: 1}, {Key: "user_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uq_likes_like"),
			},
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "entity_type_id", Value: 1}},
				Options: options.Index().SetName("idx_likes_like_user"),
			},
		},
		countersCollection: {
			{
				Keys:    bson.D{{Key: "entity_type_id", Value: 1}, {Key: "entity_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uq_likes_likes"),
			},
		},
		entityTypesCollection: {
			{
				Keys:    bson.D{{Key: "namespace", Value: 1}, {Key: "type_name", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uq_like_entity_type"),
			},
		},
	}
	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("creating indexes on %s: %w", name, classify(err))
		}
	}
	return nil
}
