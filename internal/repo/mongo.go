package repo

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"egasrsvp/internal/model"
)

const createdAtIndex = "createdAt_desc"

type mongoRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
	log    *zerolog.Logger
}

// NewMongoRepository keeps each RSVP as one document of collection. DeleteAllRSVPs
// runs in a transaction, so the server must be a replica set.
func NewMongoRepository(ctx context.Context, uri, database, collection string, log *zerolog.Logger) (Repository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return &mongoRepository{
		client: client,
		coll:   client.Database(database).Collection(collection),
		log:    log,
	}, nil
}

func (r *mongoRepository) MigrateUp(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName(createdAtIndex),
	})
	if err != nil {
		return fmt.Errorf("failed to create createdAt index: %w", err)
	}
	r.log.Info().Str("collection", r.coll.Name()).Msg("Mongo indexes ensured")
	return nil
}

func (r *mongoRepository) MigrateDown(ctx context.Context) error {
	if _, err := r.coll.Indexes().DropOne(ctx, createdAtIndex); err != nil {
		return fmt.Errorf("failed to drop createdAt index: %w", err)
	}
	return nil
}

func (r *mongoRepository) AddRSVP(ctx context.Context, rsvp *model.RSVP) error {
	prepare(rsvp)
	if _, err := r.coll.InsertOne(ctx, rsvp); err != nil {
		return fmt.Errorf("failed to insert rsvp document: %w", err)
	}
	return nil
}

func (r *mongoRepository) ListRSVPs(ctx context.Context) ([]model.RSVP, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query rsvp documents: %w", err)
	}

	rsvps := make([]model.RSVP, 0)
	if err := cur.All(ctx, &rsvps); err != nil {
		return nil, fmt.Errorf("failed to decode rsvp documents: %w", err)
	}
	for i := range rsvps {
		rsvps[i].CreatedAt = rsvps[i].CreatedAt.UTC()
	}
	return rsvps, nil
}

func (r *mongoRepository) DeleteAllRSVPs(ctx context.Context) (int, error) {
	sess, err := r.client.StartSession()
	if err != nil {
		return 0, fmt.Errorf("failed to start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	res, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		count, err := r.coll.CountDocuments(sc, bson.D{})
		if err != nil {
			return 0, fmt.Errorf("failed to count rsvp documents: %w", err)
		}
		if count == 0 {
			return 0, nil
		}
		if _, err := r.coll.DeleteMany(sc, bson.D{}); err != nil {
			return 0, fmt.Errorf("failed to delete rsvp documents: %w", err)
		}
		return int(count), nil
	})
	if err != nil {
		return 0, err
	}
	return res.(int), nil
}

func (r *mongoRepository) Close() error {
	return r.client.Disconnect(context.Background())
}
