// Package shared holds the collaborators every application service uses:
// request validation and the domain-event publisher.
package shared

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/StayLedger/pkg/errors"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			if len(s) != 3 {
				return false
			}
			for _, r := range s {
				if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
					return false
				}
			}
			return true
		})
	})
	return validate
}

// Validate checks the `validate` tags of input and reports every failing
// field in one CodeValidation error.
func Validate(input interface{}) error {
	err := instance().Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.Wrap(err, errors.CodeValidation, "invalid input")
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
	}
	return errors.NewValidation("invalid input").WithDetail(strings.Join(parts, "; "))
}

// ─────────────────────────────────────────────────────────────────────────────
// Events
// ─────────────────────────────────────────────────────────────────────────────

// Publisher emits domain events. The Kafka producer implements it.
type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, payload interface{}) error
}

// NopPublisher drops every event. It is used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishEvent(context.Context, string, string, interface{}) error { return nil }

// Notify publishes after the state change has been committed. A publish
// failure is logged and never undoes the change.
func Notify(ctx context.Context, pub Publisher, log logging.Logger, topic, key string, payload interface{}) {
	if pub == nil {
		return
	}
	if err := pub.PublishEvent(ctx, topic, key, payload); err != nil {
		log.Warn("event publish failed",
			logging.String("topic", topic),
			logging.String("key", key),
			logging.Err(err))
	}
}

//Personal.AI order the ending
