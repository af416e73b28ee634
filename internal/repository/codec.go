package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/persistence"
)

// loadJSON decodes the value stored under key into dst. It reports false
// when the key is absent. Text that does not decode is logged, deleted and
// treated as absent; only backend failures are returned as errors.
func loadJSON(ctx context.Context, store persistence.Store, logger *zap.Logger, key string, dst any) (bool, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, persistence.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		logger.Warn("discarding corrupt stored data", zap.String("key", key), zap.Error(err))
		if delErr := store.Delete(ctx, key); delErr != nil {
			return false, fmt.Errorf("delete corrupt %s: %w", key, delErr)
		}
		return false, nil
	}
	return true, nil
}

func saveJSON(ctx context.Context, store persistence.Store, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, string(payload)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
