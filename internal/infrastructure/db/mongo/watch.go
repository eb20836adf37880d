package mongo

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// watchStore opens a change stream on col scoped to one store and emits the
// result of load once immediately and again after every change. Deletes carry
// no document, so every delete in the collection triggers a reload.
//
// The returned channel closes when ctx is done or the stream fails.
func watchStore[T any](
	ctx context.Context,
	col *mongo.Collection,
	storeSlug string,
	load func(context.Context) ([]T, error),
	log zerolog.Logger,
) (<-chan []T, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"fullDocument.storeId": storeSlug},
			bson.M{"operationType": "delete"},
		}}}},
	}
	stream, err := col.Watch(ctx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return nil, fmt.Errorf("open %s change stream: %w", col.Name(), err)
	}

	initial, err := load(ctx)
	if err != nil {
		_ = stream.Close(context.Background())
		return nil, err
	}

	out := make(chan []T, 1)
	out <- initial

	go func() {
		defer close(out)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			snapshot, err := load(ctx)
			if err != nil {
				log.Error().Err(err).Str("collection", col.Name()).Str("store", storeSlug).Msg("snapshot reload failed")
				return
			}
			select {
			case out <- snapshot:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Str("collection", col.Name()).Str("store", storeSlug).Msg("change stream failed")
		}
	}()
	return out, nil
}
