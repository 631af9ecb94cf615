package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error. The kind, not the message, decides how
// the error is reported to API callers.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindConflict
	KindValidation
)

// Error is a classified domain error carrying a stable, user-facing message
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// NotFound creates a NotFound error
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict creates a Conflict error
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Validation creates a Validation error
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Validationf creates a Validation error with a formatted message
func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// KindOf returns the kind of the first *Error in err's chain
func KindOf(err error) (ErrorKind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is a domain error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound      = NotFound("player not found")
	ErrNoPlayers           = NotFound("no players found")
	ErrEmailInUse          = Conflict("this email is already in use")
	ErrNicknameInUse       = Conflict("this nickname is already in use")
	ErrDuplicateField      = Conflict("duplicate field")
	ErrPlayerLocked        = Validation("player is in a match and cannot be updated")
	ErrPlayerUndeletable   = Validation("player is in a match and cannot be deleted")
	ErrMembershipImmutable = Validation("match membership can only be changed by joining or leaving a match")

	// Match errors
	ErrMatchNotFound    = NotFound("match not found")
	ErrNoMatches        = NotFound("no matches found")
	ErrNoOpenMatches    = NotFound("no open matches found")
	ErrNoHistory        = NotFound("no history found for this player")
	ErrMatchNameTaken   = Conflict("a match with this name already exists")
	ErrMatchHasPlayers  = Validation("match has players and cannot be deleted")
	ErrAlreadyInMatch   = Conflict("player is already in a match")
	ErrMatchNotOpen     = Conflict("match is not open for joining")
	ErrMatchFull        = Conflict(fmt.Sprintf("match is full (max %d players)", MaxPlayers))
	ErrNotInMatch       = Conflict("player is not part of this match")
	ErrMatchInProgress  = Conflict("match is already in progress")
	ErrMatchRestart     = Conflict("match is already finished and cannot be restarted")
	ErrNoPlayersToStart = Validation("cannot start a match without players")
	ErrMatchNotStarted  = Conflict("match has not been started")
	ErrMatchFinished    = Conflict("match is already finished")
)
