package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// Commands carry their logger on the context so helpers deep in a call
// chain log with the same component and entry fields.

// WithContext attaches log to ctx.
func WithContext(ctx context.Context, log zerolog.Logger) context.Context {
	return log.WithContext(ctx)
}

// FromContext never returns nil; a bare context yields a disabled logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

func WithComponent(ctx context.Context, component string) context.Context {
	return with(ctx, "component", component)
}

func WithEntryID(ctx context.Context, id string) context.Context {
	return with(ctx, "entry_id", id)
}

func with(ctx context.Context, key, value string) context.Context {
	log := FromContext(ctx).With().Str(key, value).Logger()
	return WithContext(ctx, log)
}
