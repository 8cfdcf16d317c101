package transport

import (
	"encoding/json"
	"errors"

	"github.com/frahmantamala/mercado-facil/internal"
	"github.com/frahmantamala/mercado-facil/internal/permission"
)

// TranslateError maps errors shared by every handler onto AppErrors. It
// returns nil when err is not one of them.
func TranslateError(err error) *internal.AppError {
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.Is(err, permission.ErrAuthorizationIndeterminate):
		return internal.NewIndeterminateError(err)
	case errors.Is(err, permission.ErrUnknownResource):
		return internal.NewValidationFieldError("resource", err.Error(), internal.ErrCodeInvalidResource)
	case errors.Is(err, permission.ErrUnknownAction):
		return internal.NewValidationFieldError("action", err.Error(), internal.ErrCodeInvalidAction)
	case errors.Is(err, permission.ErrUnknownRole):
		return internal.NewValidationFieldError("role", err.Error(), internal.ErrCodeInvalidRole)
	case errors.Is(err, permission.ErrActionNotAllowed):
		return internal.NewValidationError(err.Error(), internal.ErrCodeActionNotAllowed)
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return internal.NewValidationError("malformed request body", internal.ErrCodeValidationFailed).WithCause(err)
	}
	return nil
}
