package config

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongoDB establishes the process-wide MongoDB client. When the
// first attempt fails and MongoTLSInsecureFallback is set, it retries once
// with certificate verification disabled and a longer server-selection
// timeout. The fallback is a degraded mode for development setups with
// broken CA chains; it is off unless explicitly configured.
func ConnectMongoDB(cfg *Config) (*mongo.Client, error) {
	client, err := connect(cfg.MongoURI, 5*time.Second, nil)
	if err == nil {
		return client, nil
	}

	if !cfg.MongoTLSInsecureFallback {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	client, retryErr := connect(cfg.MongoURI, 10*time.Second, &tls.Config{InsecureSkipVerify: true})
	if retryErr != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB even with relaxed TLS: %w", retryErr)
	}
	return client, nil
}

func connect(uri string, timeout time.Duration, tlsCfg *tls.Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	opts := options.Client().ApplyURI(uri).SetServerSelectionTimeout(timeout)
	if tlsCfg != nil {
		opts = opts.SetTLSConfig(tlsCfg)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return client, nil
}
