package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/watacorp/botflow/pkg/persistence"
	"github.com/watacorp/botflow/pkg/persistence/file"
	"github.com/watacorp/botflow/pkg/persistence/postgresql"
	redisstore "github.com/watacorp/botflow/pkg/persistence/redis"
)

// NewPersistence selects the persistence backend from the database URL
// scheme. Anything that is not postgres or redis falls back to the file
// backend.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgresql.NewPersistence(ctx, logger, databaseURL)

	case strings.HasPrefix(databaseURL, "redis://"), strings.HasPrefix(databaseURL, "rediss://"):
		options, err := goredis.ParseURL(databaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis URL: %w", err)
		}

		return redisstore.NewPersistence(ctx, logger, options)

	default:
		return file.NewPersistence(databaseURL), nil
	}
}
