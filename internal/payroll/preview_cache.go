package payroll

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultPreviewTTL = 60 * time.Second

// PreviewCache serves side-effect-free payslip previews. Concurrent identical
// requests collapse into one computation via singleflight, and finished
// previews live briefly in redis so a UI polling the same period does not
// recompute the whole pipeline each time.
type PreviewCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

func NewPreviewCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *PreviewCache {
	if ttl <= 0 {
		ttl = defaultPreviewTTL
	}
	if logger == nil {
		logger = zap.L()
	}
	return &PreviewCache{rdb: rdb, ttl: ttl, logger: logger.Named("payroll.preview_cache")}
}

func previewKey(companyID, employeeID string, year, month int) string {
	return fmt.Sprintf("payroll:preview:%s:%s:%04d-%02d", companyID, employeeID, year, month)
}

// GetOrCompute returns the cached preview for the key or computes it once.
// Cache failures are logged and degrade to a plain computation.
func (c *PreviewCache) GetOrCompute(
	ctx context.Context,
	key string,
	compute func() (PayslipResponse, error),
) (PayslipResponse, error) {
	if c.rdb != nil {
		cached, err := c.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var resp PayslipResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				return resp, nil
			}
			c.logger.Warn("cached preview is unreadable, recomputing", zap.String("key", key))
		} else if err != redis.Nil {
			c.logger.Warn("preview cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		resp, err := compute()
		if err != nil {
			return PayslipResponse{}, err
		}

		if c.rdb != nil {
			if payload, err := json.Marshal(resp); err == nil {
				if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
					c.logger.Warn("preview cache write failed", zap.String("key", key), zap.Error(err))
				}
			}
		}
		return resp, nil
	})
	if err != nil {
		return PayslipResponse{}, err
	}
	return v.(PayslipResponse), nil
}

// Invalidate drops a cached preview, used after ledger changes that would
// make a cached figure stale.
func (c *PreviewCache) Invalidate(ctx context.Context, key string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("preview cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}
