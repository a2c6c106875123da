package service

import (
	"github.com/google/uuid"

	"github.com/badcheese/keymaster-server/internal/model"
	"github.com/badcheese/keymaster-server/internal/util"
)

// SignedCommand carries the nonce and signature a keyholder attaches
// to a command submission.
type SignedCommand struct {
	Nonce     string
	Signature string
}

// SignCommand generates a fresh nonce and signs the canonical message
// "<pairingId>:<commandType>:<nonce>" with HMAC-SHA256 keyed by the
// pairing secret. The nonce is the only randomness; given the same
// nonce the output is identical on both sides of the wire.
func SignCommand(pairingID int64, commandType model.CommandType, secret string) SignedCommand {
	nonce := uuid.NewString()
	message := util.CanonicalCommandMessage(pairingID, string(commandType), nonce)
	return SignedCommand{
		Nonce:     nonce,
		Signature: util.HmacSHA256(secret, message),
	}
}

// VerifyCommand recomputes the signature and compares in constant
// time. It never reveals where a mismatch occurs.
func VerifyCommand(pairingID int64, commandType model.CommandType, nonce, signature, secret string) bool {
	message := util.CanonicalCommandMessage(pairingID, string(commandType), nonce)
	expected := util.HmacSHA256(secret, message)
	return util.ConstantTimeEqual(expected, signature)
}
