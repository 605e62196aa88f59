package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/denisAlshanov/ytplatform/internal/config"
)

// onOffCollection holds one document per enabled flag: {on_off: <flag id>}.
const onOffCollection = "onoff"

type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
	onoff    *mongo.Collection
}

func NewMongoDB(cfg *config.MongoDBConfig) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.URI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.Database)

	mongodb := &MongoDB{
		client:   client,
		database: db,
		onoff:    db.Collection(onOffCollection),
	}

	if err := mongodb.createIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return mongodb, nil
}

func (m *MongoDB) createIndexes(ctx context.Context) error {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "on_off", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	if _, err := m.onoff.Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("failed to create onoff index: %w", err)
	}
	return nil
}

// IsOn reports whether a document exists for flag.
func (m *MongoDB) IsOn(ctx context.Context, flag int) (bool, error) {
	err := m.onoff.FindOne(ctx, bson.M{"on_off": flag}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read flag %d: %w", flag, err)
	}
	return true, nil
}

// SetFlag inserts or removes the document for flag.
func (m *MongoDB) SetFlag(ctx context.Context, flag int, on bool) error {
	filter := bson.M{"on_off": flag}
	if !on {
		if _, err := m.onoff.DeleteOne(ctx, filter); err != nil {
			return fmt.Errorf("failed to disable flag %d: %w", flag, err)
		}
		return nil
	}

	opts := options.Update().SetUpsert(true)
	if _, err := m.onoff.UpdateOne(ctx, filter, bson.M{"$set": filter}, opts); err != nil {
		return fmt.Errorf("failed to enable flag %d: %w", flag, err)
	}
	return nil
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *MongoDB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return m.client.Ping(ctx, readpref.Primary())
}
