package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
)

const (
	minScore = 0.0
	maxScore = 100.0
)

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// validationError turns validator output into a VALIDATION_ERROR listing the failing fields.
// Payloads failing only on score components report INVALID_SCORE instead.
func validationError(err error, subject string) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid %s payload", subject))
	}
	base := appErrors.ErrInvalidScore
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Tag() != scoreTag {
			base = appErrors.ErrValidation
		}
		parts = append(parts, describeField(fe))
	}
	return appErrors.Wrap(err, base.Code, base.Status,
		fmt.Sprintf("invalid %s payload: %s", subject, strings.Join(parts, "; ")))
}

func describeField(fe validator.FieldError) string {
	field := toSnake(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min", "max":
		return fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case scoreTag:
		return field + " must be blank or a number between 0 and 100"
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

func toSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

const scoreTag = "score"

// registerScoreValidation teaches validate to read models.Score as its raw
// text and adds the score tag, which accepts blanks and numbers within [0, 100].
func registerScoreValidation(validate *validator.Validate) {
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		score, ok := field.Interface().(models.Score)
		if !ok || !score.Valid {
			return ""
		}
		return score.Raw
	}, models.Score{})
	validate.RegisterValidation(scoreTag, func(fl validator.FieldLevel) bool {
		score := models.ParseScore(fl.Field().String())
		if score.IsBlank() {
			return true
		}
		v, ok := score.Float()
		return ok && v >= minScore && v <= maxScore
	})
}

func invalidateGradebook(ctx context.Context, cache cacheInvalidator, logger *zap.Logger) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, gradebookCachePattern); err != nil {
		logger.Warn("failed to invalidate gradebook cache", zap.Error(err))
	}
}
