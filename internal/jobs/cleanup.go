package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/badcheese/keymaster-server/internal/repository"
)

// CleanupJob periodically removes pairing codes that expired without
// being accepted and prunes terminal commands past the retention
// window. Nonce records expire on their own via the store's TTL.
type CleanupJob struct {
	pairingRepo      repository.PairingRepository
	commandRepo      repository.CommandRepository
	commandRetention time.Duration
	interval         time.Duration
	done             chan struct{}
}

func NewCleanupJob(
	pairingRepo repository.PairingRepository,
	commandRepo repository.CommandRepository,
	commandRetention time.Duration,
	interval time.Duration,
) *CleanupJob {
	return &CleanupJob{
		pairingRepo:      pairingRepo,
		commandRepo:      commandRepo,
		commandRetention: commandRetention,
		interval:         interval,
		done:             make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	j.runCleanup(ctx, "expired pending pairings", j.pairingRepo.DeleteExpiredPending)
	j.runCleanup(ctx, "old terminal commands", func(ctx context.Context) (int64, error) {
		return j.commandRepo.DeleteTerminalBefore(ctx, time.Now().Add(-j.commandRetention))
	})
}

func (j *CleanupJob) runCleanup(ctx context.Context, name string, fn func(context.Context) (int64, error)) {
	count, err := fn(ctx)
	if err != nil {
		log.Error().Err(err).Msgf("failed to cleanup %s", name)
	} else if count > 0 {
		log.Info().Int64("count", count).Msgf("cleaned up %s", name)
	}
}
