package model

type Role string

const (
	RoleWearer    Role = "wearer"
	RoleKeyholder Role = "keyholder"
)

func (r Role) Valid() bool {
	return r == RoleWearer || r == RoleKeyholder
}

type PairingStatus string

const (
	PairingStatusPending PairingStatus = "pending"
	PairingStatusActive  PairingStatus = "active"
	PairingStatusRevoked PairingStatus = "revoked"
)

type CommandType string

const (
	CommandUnlock      CommandType = "unlock"
	CommandLock        CommandType = "lock"
	CommandTimedUnlock CommandType = "timed_unlock"
	CommandShock       CommandType = "shock"
	CommandVibration   CommandType = "vibration"
	CommandStopAll     CommandType = "stop_all"
)

func (t CommandType) Valid() bool {
	switch t {
	case CommandUnlock, CommandLock, CommandTimedUnlock, CommandShock, CommandVibration, CommandStopAll:
		return true
	}
	return false
}

type CommandStatus string

const (
	CommandStatusQueued    CommandStatus = "queued"
	CommandStatusDelivered CommandStatus = "delivered"
	CommandStatusExecuted  CommandStatus = "executed"
	CommandStatusFailed    CommandStatus = "failed"
)

// Terminal reports whether the status is a final outcome. Terminal
// commands are never re-surfaced by poll and never change again.
func (s CommandStatus) Terminal() bool {
	return s == CommandStatusExecuted || s == CommandStatusFailed
}

// CommandOutcome is the subset of statuses the wearer may report.
type CommandOutcome string

const (
	OutcomeExecuted CommandOutcome = "executed"
	OutcomeFailed   CommandOutcome = "failed"
)

func (o CommandOutcome) Valid() bool {
	return o == OutcomeExecuted || o == OutcomeFailed
}

func (o CommandOutcome) Status() CommandStatus {
	if o == OutcomeFailed {
		return CommandStatusFailed
	}
	return CommandStatusExecuted
}
