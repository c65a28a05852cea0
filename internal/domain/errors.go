package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrContextDone   = errors.New("context cancelled")
	ErrLockHeld      = errors.New("lock already held")
	ErrWSDisconnect  = errors.New("websocket disconnected")

	// Position construction failures. These are the only ways opening a
	// virtual position can be refused.
	ErrScenarioNotValid = errors.New("SCENARIO_NOT_VALID")
	ErrRiskNotValid     = errors.New("RISK_NOT_VALID")
)
