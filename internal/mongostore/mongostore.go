package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"newsbrief/internal/domain"
)

const (
	mongoCloseTimeout = 5 * time.Second
	// Default name of an ascending created_at index.
	ttlIndexName = "created_at_1"
)

type Config struct {
	URI        string
	Database   string
	Collection string
	// TTL adds a TTL index on created_at when positive.
	TTL time.Duration
}

// Store keeps summaries in a MongoDB collection with a unique index on url.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
	log        *slog.Logger
}

type summaryDocument struct {
	URL       string    `bson:"url"`
	Points    []string  `bson:"points"`
	CreatedAt time.Time `bson:"created_at"`
}

func (c Config) validate() error {
	switch {
	case strings.TrimSpace(c.URI) == "":
		return errors.New("mongo uri is required")
	case strings.TrimSpace(c.Database) == "":
		return errors.New("mongo database name is required")
	case strings.TrimSpace(c.Collection) == "":
		return errors.New("mongo collection name is required")
	}

	return nil
}

func New(ctx context.Context, cfg Config, log *slog.Logger) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		return nil, errors.Join(fmt.Errorf("ping: %w", err), client.Disconnect(ctx))
	}

	s := &Store{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		log:        log,
	}

	if err = s.ensureIndexes(ctx, cfg.TTL); err != nil {
		return nil, errors.Join(err, client.Disconnect(ctx))
	}

	log.InfoContext(ctx, "Mongo store is initialized",
		"database", cfg.Database,
		"collection", cfg.Collection,
		"ttl", cfg.TTL)

	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context, ttl time.Duration) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "url", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create url index: %w", err)
	}

	return s.ensureTTLIndex(ctx, ttlSeconds(ttl))
}

// ensureTTLIndex brings the created_at TTL index in line with the configured
// expiry. An existing index with other options would make CreateOne fail, so
// it is changed in place with collMod.
func (s *Store) ensureTTLIndex(ctx context.Context, want int32) error {
	current, exists, err := s.ttlIndexSeconds(ctx)
	if err != nil {
		return err
	}

	change := planTTLIndex(current, exists, want)

	switch change {
	case ttlKeep:
		return nil

	case ttlCreate:
		_, err = s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetName(ttlIndexName).SetExpireAfterSeconds(want),
		})

	case ttlUpdate:
		err = s.collection.Database().RunCommand(ctx, bson.D{
			{Key: "collMod", Value: s.collection.Name()},
			{Key: "index", Value: bson.D{
				{Key: "name", Value: ttlIndexName},
				{Key: "expireAfterSeconds", Value: want},
			}},
		}).Err()

	case ttlDrop:
		_, err = s.collection.Indexes().DropOne(ctx, ttlIndexName)
	}
	if err != nil {
		return fmt.Errorf("%s ttl index: %w", change, err)
	}

	s.log.InfoContext(ctx, "Mongo TTL index is updated",
		"change", change.String(),
		"previousSeconds", current,
		"expireAfterSeconds", want)

	return nil
}

func (s *Store) ttlIndexSeconds(ctx context.Context) (int32, bool, error) {
	cursor, err := s.collection.Indexes().List(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("list indexes: %w", err)
	}

	var indexes []struct {
		Name               string `bson:"name"`
		ExpireAfterSeconds *int32 `bson:"expireAfterSeconds"`
	}
	if err = cursor.All(ctx, &indexes); err != nil {
		return 0, false, fmt.Errorf("decode indexes: %w", err)
	}

	for _, index := range indexes {
		if index.Name != ttlIndexName {
			continue
		}

		if index.ExpireAfterSeconds == nil {
			return 0, true, nil
		}

		return *index.ExpireAfterSeconds, true, nil
	}

	return 0, false, nil
}

type ttlChange int

const (
	ttlKeep ttlChange = iota
	ttlCreate
	ttlUpdate
	ttlDrop
)

func (c ttlChange) String() string {
	switch c {
	case ttlCreate:
		return "create"
	case ttlUpdate:
		return "update"
	case ttlDrop:
		return "drop"
	default:
		return "keep"
	}
}

// planTTLIndex decides how to move from the current index state to want
// seconds of expiry. Zero want means no expiry.
func planTTLIndex(current int32, exists bool, want int32) ttlChange {
	switch {
	case !exists && want == 0:
		return ttlKeep
	case !exists:
		return ttlCreate
	case want == 0:
		return ttlDrop
	case current != want:
		return ttlUpdate
	default:
		return ttlKeep
	}
}

func ttlSeconds(ttl time.Duration) int32 {
	if ttl <= 0 {
		return 0
	}

	seconds := ttl / time.Second
	if seconds > math.MaxInt32 {
		return math.MaxInt32
	}

	return max(int32(seconds), 1)
}

func (s *Store) GetSummary(ctx context.Context, url string) (domain.SummaryRecord, bool, error) {
	var doc summaryDocument

	err := s.collection.FindOne(ctx, bson.M{"url": url}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.SummaryRecord{}, false, nil
	}
	if err != nil {
		return domain.SummaryRecord{}, false, fmt.Errorf("find summary: %w", err)
	}

	return domain.SummaryRecord{
		URL:       doc.URL,
		Points:    doc.Points,
		CreatedAt: doc.CreatedAt.UTC(),
	}, true, nil
}

// PutSummary relies on the unique url index for insert-if-absent.
func (s *Store) PutSummary(ctx context.Context, record domain.SummaryRecord) error {
	if strings.TrimSpace(record.URL) == "" {
		return errors.New("summary URL is empty")
	}

	if len(record.Points) == 0 {
		return errors.New("summary points are empty")
	}

	_, err := s.collection.InsertOne(ctx, summaryDocument{
		URL:       record.URL,
		Points:    record.Points,
		CreatedAt: record.CreatedAt.UTC(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicateKey
	}
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}

	return nil
}

func (s *Store) DeleteSummariesBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.collection.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": before.UTC()}})
	if err != nil {
		return 0, fmt.Errorf("delete summaries: %w", err)
	}

	return res.DeletedCount, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoCloseTimeout)
	defer cancel()

	return s.client.Disconnect(ctx)
}
