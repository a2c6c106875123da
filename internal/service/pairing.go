package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/badcheese/keymaster-server/internal/audit"
	apperrors "github.com/badcheese/keymaster-server/internal/errors"
	"github.com/badcheese/keymaster-server/internal/model"
	"github.com/badcheese/keymaster-server/internal/repository"
	"github.com/badcheese/keymaster-server/internal/util"
)

const (
	pairingCodeChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	pairingCodeLength = 8
)

type PairingService struct {
	pairingRepo repository.PairingRepository
	deviceRepo  repository.DeviceRepository
	nonceRepo   repository.NonceRepository
	codeTTL     time.Duration
}

func NewPairingService(
	pairingRepo repository.PairingRepository,
	deviceRepo repository.DeviceRepository,
	nonceRepo repository.NonceRepository,
	codeTTL time.Duration,
) *PairingService {
	return &PairingService{
		pairingRepo: pairingRepo,
		deviceRepo:  deviceRepo,
		nonceRepo:   nonceRepo,
		codeTTL:     codeTTL,
	}
}

// CreateCode starts a pairing: a fresh secret, a short-lived one-time
// code, and a pending row. The returned pairing carries the secret;
// this and AcceptCode are the only two places it ever leaves the store.
func (s *PairingService) CreateCode(ctx context.Context, wearerID, deviceID int64) (*model.Pairing, error) {
	device, err := s.deviceRepo.FindByID(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("find device: %w", err)
	}
	if device == nil || device.OwnerID != wearerID {
		return nil, apperrors.DeviceNotOwned()
	}

	secret, err := util.GenerateSecret()
	if err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}

	var code string
	for attempts := 0; attempts < 10; attempts++ {
		code = generateRandomCode()
		existing, _ := s.pairingRepo.FindByCode(ctx, code)
		if existing == nil || existing.Status != model.PairingStatusPending {
			break
		}
	}

	pairing, err := s.pairingRepo.Create(ctx, model.CreatePairingParams{
		WearerID:      wearerID,
		DeviceID:      deviceID,
		Secret:        secret,
		Code:          code,
		CodeExpiresAt: time.Now().Add(s.codeTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("create pairing: %w", err)
	}

	audit.Log(audit.Event{
		Type:      audit.EventPairingCreated,
		UserID:    wearerID,
		PairingID: pairing.ID,
		Details:   map[string]any{"device_id": deviceID, "code": util.MaskCode(code)},
	})

	return pairing, nil
}

// AcceptCode consumes a pending code and activates the pairing. The
// transition is a conditional UPDATE in the store, so of N concurrent
// callers exactly one wins; losers get classified by a follow-up read.
func (s *PairingService) AcceptCode(ctx context.Context, keyholderID int64, code string) (*model.PairingSummary, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	pairing, err := s.pairingRepo.Accept(ctx, normalized, keyholderID)
	if err != nil {
		return nil, fmt.Errorf("accept code: %w", err)
	}

	if pairing == nil {
		return nil, s.classifyAcceptFailure(ctx, keyholderID, normalized)
	}

	audit.Log(audit.Event{
		Type:      audit.EventPairingAccepted,
		UserID:    keyholderID,
		PairingID: pairing.ID,
	})

	summary, err := s.pairingRepo.SummaryByID(ctx, pairing.ID)
	if err != nil {
		return nil, fmt.Errorf("load pairing summary: %w", err)
	}
	if summary == nil {
		return nil, apperrors.Internal("pairing vanished after accept")
	}
	return summary, nil
}

func (s *PairingService) classifyAcceptFailure(ctx context.Context, keyholderID int64, code string) error {
	reason := apperrors.CodeNotFound()

	existing, err := s.pairingRepo.FindByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("classify accept failure: %w", err)
	}

	switch {
	case existing == nil:
		// reason stays CodeNotFound
	case existing.Status != model.PairingStatusPending:
		reason = apperrors.CodeAlreadyUsed()
	case !existing.CodeExpiresAt.After(time.Now()):
		// First expired lookup burns the code.
		if err := s.pairingRepo.ClearCode(ctx, existing.ID); err != nil {
			log.Error().Err(err).Int64("pairingId", existing.ID).Msg("failed to clear expired code")
		}
		reason = apperrors.CodeExpired()
	default:
		// Pending and unexpired, yet our CAS lost: a concurrent accept
		// committed between the two reads.
		reason = apperrors.CodeAlreadyUsed()
	}

	audit.Log(audit.Event{
		Type:    audit.EventCodeAcceptFailure,
		UserID:  keyholderID,
		Details: map[string]any{"code": util.MaskCode(code), "reason": string(reason.Code)},
	})

	return reason
}

// Revoke ends a pairing for good. Either party may revoke; anyone else
// (and lookups of missing pairings) gets the same opaque refusal.
func (s *PairingService) Revoke(ctx context.Context, userID, pairingID int64) error {
	pairing, err := s.pairingRepo.FindByID(ctx, pairingID)
	if err != nil {
		return fmt.Errorf("find pairing: %w", err)
	}
	if pairing == nil || !isParty(pairing, userID) {
		return apperrors.NotAuthorized()
	}
	if pairing.Status == model.PairingStatusRevoked {
		return apperrors.AlreadyRevoked()
	}

	revoked, err := s.pairingRepo.Revoke(ctx, pairingID)
	if err != nil {
		return fmt.Errorf("revoke pairing: %w", err)
	}
	if !revoked {
		return apperrors.AlreadyRevoked()
	}

	if purged, err := s.nonceRepo.PurgePairing(ctx, pairingID); err != nil {
		log.Error().Err(err).Int64("pairingId", pairingID).Msg("failed to purge nonces on revoke")
	} else if purged > 0 {
		log.Debug().Int64("pairingId", pairingID).Int64("count", purged).Msg("purged nonce records")
	}

	audit.Log(audit.Event{
		Type:      audit.EventPairingRevoked,
		UserID:    userID,
		PairingID: pairingID,
	})

	return nil
}

// List returns every pairing the user is a party of. The secret is
// exposed only on active entries.
func (s *PairingService) List(ctx context.Context, userID int64) ([]model.PairingSummary, error) {
	summaries, err := s.pairingRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list pairings: %w", err)
	}
	for i := range summaries {
		if summaries[i].Status != model.PairingStatusActive {
			summaries[i].Secret = ""
		}
	}
	return summaries, nil
}

func isParty(p *model.Pairing, userID int64) bool {
	if p.WearerID == userID {
		return true
	}
	return p.KeyholderID != nil && *p.KeyholderID == userID
}

func generateRandomCode() string {
	chars := []byte(pairingCodeChars)
	code := make([]byte, pairingCodeLength)
	for i := range code {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		code[i] = chars[n.Int64()]
	}
	return string(code)
}
