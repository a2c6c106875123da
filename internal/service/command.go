package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/badcheese/keymaster-server/internal/audit"
	apperrors "github.com/badcheese/keymaster-server/internal/errors"
	"github.com/badcheese/keymaster-server/internal/model"
	"github.com/badcheese/keymaster-server/internal/repository"
)

const maxNonceLength = 128

type SendCommandParams struct {
	PairingID int64
	Type      model.CommandType
	Params    json.RawMessage
	Nonce     string
	Signature string
}

type CommandService struct {
	commandRepo   repository.CommandRepository
	pairingRepo   repository.PairingRepository
	nonceRepo     repository.NonceRepository
	nonceTTL      time.Duration
	deliveryGrace time.Duration
}

func NewCommandService(
	commandRepo repository.CommandRepository,
	pairingRepo repository.PairingRepository,
	nonceRepo repository.NonceRepository,
	nonceTTL time.Duration,
	deliveryGrace time.Duration,
) *CommandService {
	return &CommandService{
		commandRepo:   commandRepo,
		pairingRepo:   pairingRepo,
		nonceRepo:     nonceRepo,
		nonceTTL:      nonceTTL,
		deliveryGrace: deliveryGrace,
	}
}

// Send authorizes and enqueues a keyholder command. Every check must
// pass: active pairing, caller is its keyholder, params match the
// type's payload union, the signature verifies, and the nonce has
// never been seen for this pairing. Nonce admission runs last so an
// otherwise-invalid submission cannot burn a nonce.
func (s *CommandService) Send(ctx context.Context, keyholderID int64, params SendCommandParams) (*model.Command, error) {
	if params.Nonce == "" {
		return nil, apperrors.MissingRequired("nonce")
	}
	if len(params.Nonce) > maxNonceLength {
		return nil, apperrors.InvalidInput("nonce", "too long")
	}

	pairing, err := s.pairingRepo.FindByID(ctx, params.PairingID)
	if err != nil {
		return nil, fmt.Errorf("find pairing: %w", err)
	}
	if pairing == nil || pairing.Status != model.PairingStatusActive {
		return nil, apperrors.PairingNotActive()
	}
	if pairing.KeyholderID == nil || *pairing.KeyholderID != keyholderID {
		return nil, apperrors.NotKeyholder()
	}

	if !params.Type.Valid() {
		return nil, apperrors.UnknownCommandType(string(params.Type))
	}
	canonicalParams, err := model.ValidateParams(params.Type, params.Params)
	if err != nil {
		return nil, apperrors.ValidationError(err.Error())
	}

	if !VerifyCommand(params.PairingID, params.Type, params.Nonce, params.Signature, pairing.Secret) {
		audit.Log(audit.Event{
			Type:      audit.EventInvalidSignature,
			UserID:    keyholderID,
			PairingID: params.PairingID,
			Details:   map[string]any{"command_type": string(params.Type)},
		})
		return nil, apperrors.InvalidSignature()
	}

	admitted, err := s.nonceRepo.Admit(ctx, params.PairingID, params.Nonce, s.nonceTTL)
	if err != nil {
		return nil, fmt.Errorf("admit nonce: %w", err)
	}
	if !admitted {
		audit.Log(audit.Event{
			Type:      audit.EventNonceReplayed,
			UserID:    keyholderID,
			PairingID: params.PairingID,
			Details:   map[string]any{"command_type": string(params.Type)},
		})
		return nil, apperrors.NonceReplayed()
	}

	cmd, err := s.commandRepo.Create(ctx, model.CreateCommandParams{
		PairingID: params.PairingID,
		Type:      params.Type,
		Params:    canonicalParams,
		Nonce:     params.Nonce,
	})
	if err != nil {
		// The nonce was admitted but no command exists; release it so
		// a retry of the same signed payload is not refused as a replay.
		if ferr := s.nonceRepo.Forget(ctx, params.PairingID, params.Nonce); ferr != nil {
			log.Error().Err(ferr).
				Int64("pairingId", params.PairingID).
				Msg("failed to release nonce after enqueue error")
		}
		return nil, fmt.Errorf("enqueue command: %w", err)
	}

	log.Info().
		Int64("commandId", cmd.ID).
		Int64("pairingId", params.PairingID).
		Str("type", string(params.Type)).
		Msg("command queued")

	return cmd, nil
}

// Poll returns, in enqueue order, every command due for the wearer's
// active pairings and marks them delivered in the same statement.
// Delivered commands that were never confirmed re-surface after the
// grace interval, so a lost poll response cannot drop a command.
func (s *CommandService) Poll(ctx context.Context, wearerID int64) ([]model.Command, error) {
	cmds, err := s.commandRepo.PollForWearer(ctx, wearerID, s.deliveryGrace)
	if err != nil {
		return nil, fmt.Errorf("poll commands: %w", err)
	}

	if len(cmds) > 0 {
		log.Debug().Int64("wearerId", wearerID).Int("count", len(cmds)).Msg("commands delivered")
	}
	return cmds, nil
}

// ReportResult closes a delivered command with the wearer's outcome.
// A repeated report with the same outcome is a harmless duplicate; a
// different outcome is a conflict.
func (s *CommandService) ReportResult(ctx context.Context, wearerID, commandID int64, outcome model.CommandOutcome, result json.RawMessage) error {
	if !outcome.Valid() {
		return apperrors.InvalidInput("status", "must be executed or failed")
	}

	cmd, err := s.commandRepo.FindByID(ctx, commandID)
	if err != nil {
		return fmt.Errorf("find command: %w", err)
	}
	if cmd == nil {
		return apperrors.NotFound("Command")
	}

	ownerID, found, err := s.commandRepo.WearerIDForCommand(ctx, commandID)
	if err != nil {
		return fmt.Errorf("resolve command owner: %w", err)
	}
	if !found || ownerID != wearerID {
		return apperrors.NotOwner()
	}

	if cmd.Status.Terminal() {
		if cmd.Status == outcome.Status() {
			return nil
		}
		return apperrors.ConflictingResult()
	}

	updated, err := s.commandRepo.MarkTerminal(ctx, commandID, outcome.Status(), result)
	if err != nil {
		return fmt.Errorf("mark command terminal: %w", err)
	}
	if !updated {
		// Lost a race with another report; classify against what won.
		current, err := s.commandRepo.FindByID(ctx, commandID)
		if err != nil {
			return fmt.Errorf("reload command: %w", err)
		}
		if current != nil && current.Status == outcome.Status() {
			return nil
		}
		return apperrors.ConflictingResult()
	}

	log.Info().
		Int64("commandId", commandID).
		Str("outcome", string(outcome)).
		Msg("command result recorded")

	return nil
}
