package repository

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/badcheese/keymaster-server/internal/redis"
)

// NonceRepository records consumed (pairing, nonce) pairs. Admission
// must be a single atomic test-and-set so two concurrent submissions
// of the same nonce can never both pass.
type NonceRepository interface {
	Admit(ctx context.Context, pairingID int64, nonce string, ttl time.Duration) (bool, error)
	Forget(ctx context.Context, pairingID int64, nonce string) error
	PurgePairing(ctx context.Context, pairingID int64) (int64, error)
}

type nonceRepo struct {
	client *goredis.Client
}

func NewNonceRepository(client *goredis.Client) NonceRepository {
	return &nonceRepo{client: client}
}

// Admit returns true exactly once per (pairingID, nonce). SET NX is
// the atomic check-and-insert; the TTL bounds replay-record retention.
func (r *nonceRepo) Admit(ctx context.Context, pairingID int64, nonce string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, redis.NonceKey(pairingID, nonce), 1, ttl).Result()
}

// Forget releases a nonce that was admitted for a command that never
// made it into the queue, so the same signed payload can be retried.
func (r *nonceRepo) Forget(ctx context.Context, pairingID int64, nonce string) error {
	return r.client.Del(ctx, redis.NonceKey(pairingID, nonce)).Err()
}

// PurgePairing drops every nonce record of a pairing. Called on
// revocation; afterwards the status check alone blocks injection.
func (r *nonceRepo) PurgePairing(ctx context.Context, pairingID int64) (int64, error) {
	var deleted int64
	iter := r.client.Scan(ctx, 0, redis.NoncePattern(pairingID), 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, iter.Err()
}
