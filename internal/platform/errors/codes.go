package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeInvalidArgument represents a malformed or unusable request input.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// Identity errors
	CodeIdentityTokenInvalid    Code = "IDENTITY_TOKEN_INVALID"
	CodeIdentityTokenExpired    Code = "IDENTITY_TOKEN_EXPIRED"
	CodeIdentityTokenMismatch   Code = "IDENTITY_TOKEN_MISMATCH"
	CodeIdentityEmailUnverified Code = "IDENTITY_EMAIL_UNVERIFIED"

	// Profile errors
	CodeProfileEmptyUserID  Code = "PROFILE_EMPTY_USER_ID"
	CodeProfileEmptyEmail   Code = "PROFILE_EMPTY_EMAIL"
	CodeProfileInvalidEmail Code = "PROFILE_INVALID_EMAIL"

	// Session resolution errors
	CodeAuthResolutionFailed Code = "AUTH_RESOLUTION_FAILED"

	// Mission errors
	CodeMissionEmptyID           Code = "MISSION_EMPTY_ID"
	CodeMissionEmptyTitle        Code = "MISSION_EMPTY_TITLE"
	CodeMissionInvalidLevel      Code = "MISSION_INVALID_LEVEL"
	CodeMissionInvalidPeriod     Code = "MISSION_INVALID_PERIOD"
	CodeMissionInvalidStatus     Code = "MISSION_INVALID_STATUS"
	CodeMissionInvalidTransition Code = "MISSION_INVALID_STATUS_TRANSITION"
	CodeMissionNegativeReward    Code = "MISSION_NEGATIVE_REWARD"
	CodeMissionNotRegenerable    Code = "MISSION_NOT_REGENERABLE"

	// Progress engine errors
	CodeProgressInitFailed     Code = "PROGRESS_INIT_FAILED"
	CodeProgressNotReady       Code = "PROGRESS_NOT_READY"
	CodeProgressClosed         Code = "PROGRESS_CLOSED"
	CodeProgressReconciliation Code = "PROGRESS_RECONCILIATION_FAILED"
	CodeProgressInvalidDepth   Code = "PROGRESS_INVALID_DEPTH"

	// Generator errors
	CodeGeneratorInvalidDraft Code = "GENERATOR_INVALID_DRAFT"
	CodeGeneratorExhausted    Code = "GENERATOR_ATTEMPTS_EXHAUSTED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeInvalidArgument,
		CodeProfileEmptyUserID,
		CodeProfileEmptyEmail,
		CodeProfileInvalidEmail,
		CodeMissionEmptyID,
		CodeMissionEmptyTitle,
		CodeMissionInvalidLevel,
		CodeMissionInvalidPeriod,
		CodeMissionInvalidStatus,
		CodeMissionNegativeReward,
		CodeProgressInvalidDepth,
		CodeGeneratorInvalidDraft:
		return http.StatusBadRequest

	// Unauthorized - identity could not be established
	case CodeIdentityTokenInvalid,
		CodeIdentityTokenExpired,
		CodeIdentityTokenMismatch:
		return http.StatusUnauthorized

	// Forbidden - identity established but not usable
	case CodeIdentityEmailUnverified:
		return http.StatusForbidden

	// Not found
	case CodeNotFound:
		return http.StatusNotFound

	// Conflict - state disallows the operation
	case CodeMissionInvalidTransition,
		CodeMissionNotRegenerable,
		CodeProgressNotReady,
		CodeProgressClosed:
		return http.StatusConflict

	// Upstream dependency failures
	case CodeAuthResolutionFailed,
		CodeProgressInitFailed,
		CodeProgressReconciliation,
		CodeGeneratorExhausted:
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
