package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/infantry-community/internal/domain/donation"
	"github.com/riskibarqy/infantry-community/internal/domain/dueling"
	"github.com/riskibarqy/infantry-community/internal/domain/elo"
	"github.com/riskibarqy/infantry-community/internal/domain/playerstats"
	"github.com/riskibarqy/infantry-community/internal/domain/squad"
	"github.com/riskibarqy/infantry-community/internal/domain/squadrating"
	"github.com/riskibarqy/infantry-community/internal/domain/tournament"
	"github.com/riskibarqy/infantry-community/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "infantry-community"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	ctx, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(ctx, err)
	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: err.Error(),
			Status:  mapped.Status,
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  mapped.Reason,
					Message: err.Error(),
				},
			},
		},
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	const msg = "internal server error"

	writeJSON(ctx, w, http.StatusInternalServerError, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    http.StatusInternalServerError,
			Message: msg,
			Status:  "INTERNAL",
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  "internalError",
					Message: msg,
				},
			},
		},
	})
}

func mapError(ctx context.Context, err error) mappedError {
	_, span := startSpan(ctx, "httpapi.mapError")
	defer span.End()

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return mappedError{
			HTTPStatus: http.StatusBadRequest,
			Reason:     "invalidInput",
			Status:     "INVALID_ARGUMENT",
		}
	case errors.Is(err, usecase.ErrNotFound),
		errors.Is(err, squad.ErrNotMember),
		errors.Is(err, tournament.ErrMatchNotFound):
		return mappedError{
			HTTPStatus: http.StatusNotFound,
			Reason:     "notFound",
			Status:     "NOT_FOUND",
		}
	case errors.Is(err, usecase.ErrUnauthorized):
		return mappedError{
			HTTPStatus: http.StatusUnauthorized,
			Reason:     "unauthorized",
			Status:     "UNAUTHENTICATED",
		}
	case errors.Is(err, usecase.ErrForbidden):
		return mappedError{
			HTTPStatus: http.StatusForbidden,
			Reason:     "forbidden",
			Status:     "PERMISSION_DENIED",
		}
	case errors.Is(err, usecase.ErrConflict),
		errors.Is(err, squad.ErrNameTaken),
		errors.Is(err, squad.ErrTagTaken),
		errors.Is(err, squad.ErrAlreadyInActiveSquad),
		errors.Is(err, squad.ErrAlreadyMember),
		errors.Is(err, squad.ErrDuplicateInvite),
		errors.Is(err, squad.ErrLegacyConflict),
		errors.Is(err, tournament.ErrAlreadyRegistered),
		errors.Is(err, tournament.ErrBracketExists):
		return mappedError{
			HTTPStatus: http.StatusConflict,
			Reason:     "conflict",
			Status:     "ALREADY_EXISTS",
		}
	case errors.Is(err, squad.ErrSquadFull),
		errors.Is(err, squad.ErrCaptainNeedsSuccessor),
		errors.Is(err, squad.ErrAlreadyCaptain),
		errors.Is(err, squad.ErrInviteNotPending),
		errors.Is(err, squad.ErrInviteExpired),
		errors.Is(err, squad.ErrSquadInactive),
		errors.Is(err, tournament.ErrNotAcceptingRegistrations),
		errors.Is(err, tournament.ErrFull),
		errors.Is(err, tournament.ErrNotEnoughParticipants),
		errors.Is(err, tournament.ErrMatchNotReady):
		return mappedError{
			HTTPStatus: http.StatusBadRequest,
			Reason:     "failedPrecondition",
			Status:     "FAILED_PRECONDITION",
		}
	case errors.Is(err, tournament.ErrInvalidWinner),
		errors.Is(err, tournament.ErrInvalidStatus),
		errors.Is(err, tournament.ErrNegativeAmount),
		errors.Is(err, dueling.ErrUnknownMatchType),
		errors.Is(err, dueling.ErrMissingPlayers),
		errors.Is(err, dueling.ErrInvalidWinner),
		errors.Is(err, dueling.ErrNotEnoughRounds),
		errors.Is(err, donation.ErrNegativeAmount),
		errors.Is(err, donation.ErrMissingProvider),
		errors.Is(err, donation.ErrInvalidAmount),
		errors.Is(err, squadrating.ErrMissingFields),
		errors.Is(err, squadrating.ErrRatingRange),
		errors.Is(err, elo.ErrInvalidSeason),
		errors.Is(err, playerstats.ErrMissingHeaders):
		return mappedError{
			HTTPStatus: http.StatusBadRequest,
			Reason:     "invalidInput",
			Status:     "INVALID_ARGUMENT",
		}
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return mappedError{
			HTTPStatus: http.StatusServiceUnavailable,
			Reason:     "dependencyUnavailable",
			Status:     "UNAVAILABLE",
		}
	default:
		return mappedError{
			HTTPStatus: http.StatusInternalServerError,
			Reason:     "internalError",
			Status:     "INTERNAL",
		}
	}
}
