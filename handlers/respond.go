package handlers

import (
	"errors"
	"log"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/core"

	"projectsync/services"
	"projectsync/standards"
	"projectsync/store"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func respondError(e *core.RequestEvent, status int, message string) error {
	return e.JSON(status, ErrorResponse{Message: message})
}

// respondStoreError maps a store or standards error onto an HTTP status.
// Anything unrecognised is logged and reported as a 500.
func respondStoreError(e *core.RequestEvent, op string, err error) error {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		fields := make(map[string]string, len(verrs))
		for k, v := range verrs {
			fields[k] = v.Error()
		}
		return e.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Fields: fields})
	case errors.Is(err, store.ErrBOQItemNotFound), errors.Is(err, store.ErrTaskNotFound):
		return respondError(e, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrDuplicateID), errors.Is(err, store.ErrNoPendingReSchedule):
		return respondError(e, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrDependencyCycle):
		return respondError(e, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, standards.ErrUnknownActivity),
		errors.Is(err, standards.ErrUnknownConditions),
		errors.Is(err, standards.ErrInvalidQuantity),
		errors.Is(err, standards.ErrUnknownMaterial),
		errors.Is(err, standards.ErrUnknownWasteLevel):
		return respondError(e, http.StatusBadRequest, err.Error())
	}
	log.Printf("%s: %v", op, err)
	return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
}
