package helper

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"shopfloor_backend/internals/helpers/apperr"
)

// FromError turns a service/transaction error into the standard JSON envelope.
func FromError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}
	if e, ok := apperr.As(err); ok {
		switch e.Kind {
		case apperr.KindInvalid:
			if e.Field != "" {
				return JsonValidationError(c, map[string][]string{e.Field: {e.Message}})
			}
			return JsonError(c, fiber.StatusBadRequest, e.Message)
		case apperr.KindNotFound:
			return JsonError(c, fiber.StatusNotFound, e.Message)
		case apperr.KindConflict:
			return JsonError(c, fiber.StatusConflict, e.Message)
		case apperr.KindForbidden:
			return JsonError(c, fiber.StatusForbidden, e.Message)
		}
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return JsonValidationError(c, ValidationFields(ve))
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return JsonError(c, fiber.StatusNotFound, "record not found")
	}
	if code, msg, ok := MapPGError(err); ok {
		return JsonError(c, code, msg)
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	return JsonError(c, fiber.StatusInternalServerError, "internal error")
}

// MapPGError maps constraint violations by SQLSTATE.
func MapPGError(err error) (int, string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return 0, "", false
	}
	switch pgErr.Code {
	case "23505":
		return fiber.StatusConflict, "duplicate record (unique violation)", true
	case "23503":
		return fiber.StatusBadRequest, "referenced record not found (foreign key violation)", true
	case "23514":
		return fiber.StatusBadRequest, "value rejected by check constraint " + pgErr.ConstraintName, true
	}
	return 0, "", false
}

// ValidationFields flattens validator errors into field -> messages.
func ValidationFields(ve validator.ValidationErrors) map[string][]string {
	out := make(map[string][]string, len(ve))
	for _, fe := range ve {
		field := fe.Field()
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		out[field] = append(out[field], "failed on "+msg)
	}
	return out
}
