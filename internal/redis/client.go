package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	*redis.Client
}

func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Client{client}, nil
}

func (c *Client) Close() error {
	return c.Client.Close()
}

// NonceKey is the replay-protection key for one (pairing, nonce) pair.
func NonceKey(pairingID int64, nonce string) string {
	return fmt.Sprintf("nonce:%d:%s", pairingID, nonce)
}

// NoncePattern matches every nonce key of a pairing, used when a
// revocation purges its replay records.
func NoncePattern(pairingID int64) string {
	return fmt.Sprintf("nonce:%d:*", pairingID)
}
