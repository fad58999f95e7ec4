package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/unidet/portal/internal/core/domain"
)

// Refreshed is the outcome of a change that went through: the data loaded
// again after it, or the inline text to show when that reload failed.
type Refreshed[T any] struct {
	Data  T
	Error string
}

// refresh reloads after a successful change. A reload failure never turns
// the change into an error; only a lost administrator session is returned.
func refresh[T any](ctx context.Context, log zerolog.Logger, what string, load func(context.Context) (T, error)) (Refreshed[T], error) {
	data, err := load(ctx)
	if err == nil {
		return Refreshed[T]{Data: data}, nil
	}
	if domain.IsAuthRequired(err) {
		return Refreshed[T]{}, err
	}
	log.Error().Err(err).Str("op", "reload").Msg("change saved but reload failed")
	return Refreshed[T]{Error: domain.UserMessage(err, "saved, but could not load "+what)}, nil
}
