package protocol

import (
	"errors"

	"github.com/DoyleJ11/td-sync/internal/engine"
)

type Status int

const (
	StatusOK Status = iota
	StatusError
	StatusInsufficientFunds
	StatusZoneInaccessible
	StatusPathBlocked
	StatusUnknownPlayer
	StatusNoSlot
	StatusUnauthorized
	StatusTowerUnknown
	StatusMaxLevel
	StatusMatchInProgress
	StatusInvalidType
	StatusMatchNotStarted
	StatusMatchOver
	StatusInvalidCount
	StatusNoTarget
	StatusUnknownTeam
	StatusInvalidName
)

// StatusZoneBlocked is the older name of StatusZoneInaccessible.
const StatusZoneBlocked = StatusZoneInaccessible

var statusNames = map[Status]string{
	StatusOK:                "OK",
	StatusError:             "ERROR",
	StatusInsufficientFunds: "INSUFFICIENT_FUNDS",
	StatusZoneInaccessible:  "ZONE_INACCESSIBLE",
	StatusPathBlocked:       "PATH_BLOCKED",
	StatusUnknownPlayer:     "UNKNOWN_PLAYER",
	StatusNoSlot:            "NO_SLOT_AVAILABLE",
	StatusUnauthorized:      "UNAUTHORIZED",
	StatusTowerUnknown:      "TOWER_UNKNOWN",
	StatusMaxLevel:          "MAX_LEVEL_REACHED",
	StatusMatchInProgress:   "MATCH_IN_PROGRESS",
	StatusInvalidType:       "INVALID_TYPE",
	StatusMatchNotStarted:   "MATCH_NOT_STARTED",
	StatusMatchOver:         "MATCH_OVER",
	StatusInvalidCount:      "INVALID_COUNT",
	StatusNoTarget:          "NO_TARGET",
	StatusUnknownTeam:       "UNKNOWN_TEAM",
	StatusInvalidName:       "INVALID_NAME",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "UNKNOWN_STATUS"
}

// ErrFailed stands for StatusError and any status this client does not know.
var ErrFailed = errors.New("request failed")

var statusErrors = []struct {
	status Status
	err    error
}{
	{StatusInsufficientFunds, engine.ErrInsufficientFunds},
	{StatusZoneInaccessible, engine.ErrZoneInaccessible},
	{StatusPathBlocked, engine.ErrPathBlocked},
	{StatusUnknownPlayer, engine.ErrUnknownPlayer},
	{StatusNoSlot, engine.ErrNoSlot},
	{StatusUnauthorized, engine.ErrUnauthorized},
	{StatusTowerUnknown, engine.ErrTowerUnknown},
	{StatusMaxLevel, engine.ErrMaxLevel},
	{StatusMatchInProgress, engine.ErrMatchInProgress},
	{StatusInvalidType, engine.ErrUnknownTowerType},
	{StatusInvalidType, engine.ErrUnknownCreatureType},
	{StatusMatchNotStarted, engine.ErrMatchNotStarted},
	{StatusMatchOver, engine.ErrMatchOver},
	{StatusInvalidCount, engine.ErrInvalidCount},
	{StatusNoTarget, engine.ErrNoTarget},
	{StatusUnknownTeam, engine.ErrUnknownTeam},
	{StatusInvalidName, engine.ErrInvalidName},
}

// StatusOf maps an operation result to the status sent back to the client.
// Errors outside the legality taxonomy become StatusError.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	for _, se := range statusErrors {
		if errors.Is(err, se.err) {
			return se.status
		}
	}
	return StatusError
}

// Err is the inverse of StatusOf: nil for StatusOK, the first matching engine
// error otherwise, ErrFailed when there is none.
func (s Status) Err() error {
	if s == StatusOK {
		return nil
	}
	for _, se := range statusErrors {
		if se.status == s {
			return se.err
		}
	}
	return ErrFailed
}
