// Package database contains the logic for establishing
// connections to the MongoDB database.
//
// It handles:
//   - creating the driver client from config (the driver owns pooling)
//   - wiring command logging (see monitor.go)
//   - verifying connectivity at startup with a bounded ping
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/deppfellow/userapi/internal/config"
)

// DatabasePingTimeout is the number of seconds to wait for a ping
// before considering the database unreachable.
const DatabasePingTimeout = 10

// Database wraps the MongoDB client, the application database and a logger.
type Database struct {
	Client *mongo.Client
	DB     *mongo.Database

	collection string
	log        *zerolog.Logger
}

// New connects to MongoDB and pings it so startup fails fast when the
// database is down.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*Database, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.Database.URI).
		SetAppName(config.ServiceName).
		SetConnectTimeout(cfg.Database.ConnectTimeout).
		SetServerSelectionTimeout(cfg.Database.ConnectTimeout)

	if monitor := newCommandMonitor(cfg, logger); monitor != nil {
		clientOpts.SetMonitor(monitor)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	database := &Database{
		Client:     client,
		DB:         client.Database(cfg.Database.Name),
		collection: cfg.Database.Collection,
		log:        logger,
	}

	pingCtx, cancel := context.WithTimeout(ctx, DatabasePingTimeout*time.Second)
	defer cancel()
	if err := database.Ping(pingCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().
		Str("database", cfg.Database.Name).
		Str("collection", cfg.Database.Collection).
		Msg("connected to the database")

	return database, nil
}

// Users returns the collection user documents live in.
func (db *Database) Users() *mongo.Collection {
	return db.DB.Collection(db.collection)
}

// Ping checks connectivity against the primary.
func (db *Database) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client and releases pooled connections.
func (db *Database) Close(ctx context.Context) error {
	db.log.Info().Msg("closing database connection")
	return db.Client.Disconnect(ctx)
}
