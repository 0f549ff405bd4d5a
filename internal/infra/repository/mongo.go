package repository

import (
	"context"
	"fmt"
	"time"

	"chat-relay/internal/domain/entities"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const countersCollection = "counters"

type MongoTurnRepository struct {
	mongo *mongo.Database
}

func NewMongoTurnRepository(mongo *mongo.Database) *MongoTurnRepository {
	return &MongoTurnRepository{mongo: mongo}
}

// Create assigns the next id from the counters collection, then inserts the turn as a single document.
// A failed insert leaves a gap in the sequence but never a partial turn.
func (r *MongoTurnRepository) Create(ctx context.Context, turn entities.ChatTurn) (entities.ChatTurn, error) {
	id, err := r.nextID(ctx, entities.ChatHistoryTable)
	if err != nil {
		return entities.ChatTurn{}, err
	}
	turn.ID = id
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	collection := r.mongo.Collection(entities.ChatHistoryTable)
	if _, err := collection.InsertOne(ctx, turn); err != nil {
		return entities.ChatTurn{}, err
	}
	return turn, nil
}

func (r *MongoTurnRepository) FindAllNewestFirst(ctx context.Context) ([]entities.ChatTurn, error) {
	collection := r.mongo.Collection(entities.ChatHistoryTable)
	cursor, err := collection.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var turns []entities.ChatTurn
	for cursor.Next(ctx) {
		var turn entities.ChatTurn
		if err := cursor.Decode(&turn); err != nil {
			return nil, err
		}
		turns = append(turns, turn)
	}
	return turns, cursor.Err()
}

// EnsureIndexes makes the turn id unique.
func (r *MongoTurnRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.mongo.Collection(entities.ChatHistoryTable)
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create %s id index: %w", entities.ChatHistoryTable, err)
	}
	return nil
}

func (r *MongoTurnRepository) nextID(ctx context.Context, name string) (uint, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.mongo.Collection(countersCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return uint(counter.Seq), nil
}
