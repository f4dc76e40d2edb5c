package web

import (
	"errors"
	"net/http"

	"courtside-app/internal/mirror"
	"courtside-app/internal/state"
)

// errorStatus maps store rejections to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, state.ErrPlayerNotFound),
		errors.Is(err, state.ErrCourtNotFound),
		errors.Is(err, state.ErrQueueItemNotFound),
		errors.Is(err, mirror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, state.ErrPlayersBusy),
		errors.Is(err, state.ErrCourtOccupied),
		errors.Is(err, state.ErrDuplicateName),
		errors.Is(err, state.ErrCourtLimit):
		return http.StatusConflict
	case errors.Is(err, state.ErrEmptyName),
		errors.Is(err, state.ErrInvalidSkill),
		errors.Is(err, state.ErrInvalidPlayerCount),
		errors.Is(err, state.ErrInvalidAmount),
		errors.Is(err, state.ErrInvalidFeeConfig):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// errorMessage is the notice shown to the organiser for a rejected action.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, state.ErrPlayersBusy):
		return err.Error()
	case errors.Is(err, state.ErrDuplicateName):
		return "A player with that name already exists."
	case errors.Is(err, state.ErrEmptyName):
		return "Enter a player name."
	case errors.Is(err, state.ErrInvalidSkill):
		return "Pick beginner, intermediate or advanced."
	case errors.Is(err, state.ErrInvalidPlayerCount):
		return "Singles needs 2 players and doubles needs 4."
	case errors.Is(err, state.ErrPlayerNotFound):
		return "That player no longer exists."
	case errors.Is(err, state.ErrCourtNotFound):
		return "That court no longer exists."
	case errors.Is(err, state.ErrCourtOccupied):
		return "That court is in use."
	case errors.Is(err, state.ErrCourtLimit):
		return "No more courts can be added."
	case errors.Is(err, state.ErrQueueItemNotFound):
		return "That group has already left the queue."
	case errors.Is(err, state.ErrInvalidAmount):
		return "Enter a payment above zero."
	case errors.Is(err, state.ErrInvalidFeeConfig):
		return "Fees must be zero or more."
	case errors.Is(err, mirror.ErrNotFound):
		return "This shared queue is no longer available."
	}
	return "Something went wrong."
}
