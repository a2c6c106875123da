package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const maxTimedUnlockSeconds = 86400

// TimedUnlockParams is the only command payload; every other command
// type carries no parameters.
type TimedUnlockParams struct {
	Seconds uint32 `json:"seconds"`
}

// ValidateParams checks raw against the closed per-type payload union
// and returns the canonical encoding to store, or nil when the type
// takes no parameters. Unknown fields and out-of-range values are
// rejected here so nothing untyped travels further into the system.
func ValidateParams(cmdType CommandType, raw json.RawMessage) (json.RawMessage, error) {
	switch cmdType {
	case CommandTimedUnlock:
		if len(raw) == 0 {
			return nil, fmt.Errorf("timed_unlock requires params")
		}
		var p TimedUnlockParams
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("invalid timed_unlock params: %w", err)
		}
		if p.Seconds == 0 || p.Seconds > maxTimedUnlockSeconds {
			return nil, fmt.Errorf("timed_unlock seconds must be between 1 and %d", maxTimedUnlockSeconds)
		}
		canonical, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		return canonical, nil

	case CommandUnlock, CommandLock, CommandShock, CommandVibration, CommandStopAll:
		if len(raw) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("{}")) && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return nil, fmt.Errorf("%s takes no params", cmdType)
		}
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown command type: %s", cmdType)
	}
}
