package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"geo_feedback/internal/domain"
	"geo_feedback/internal/domain/entity"
	"geo_feedback/internal/domain/value"
	"geo_feedback/pkg/contextx"
	"geo_feedback/pkg/errcodes"
	"geo_feedback/pkg/logx"
)

const (
	keyPrefix = "nearby:"
	scanBatch = 100
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// NearbyCache хранит в redis готовые результаты поиска по радиусу.
type NearbyCache struct {
	client redis.UniversalClient
}

func NewNearbyCache(client redis.UniversalClient) *NearbyCache {
	return &NearbyCache{client: client}
}

func Key(marketID int64, radiusMiles float64, key value.SortKey) string {
	return keyPrefix + strconv.FormatInt(marketID, 10) + ":" +
		strconv.FormatFloat(radiusMiles, 'f', -1, 64) + ":" + key.String()
}

func (c *NearbyCache) Get(
	ctx context.Context,
	marketID int64,
	radiusMiles float64,
	key value.SortKey,
) ([]entity.NearbyEntity, bool, error) {
	raw, err := c.client.Get(ctx, Key(marketID, radiusMiles, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, domain.WrapError(err, errcodes.InternalServerError, "failed to read nearby cache")
	}

	var result []entity.NearbyEntity
	if err := jsoniter.Unmarshal(raw, &result); err != nil {
		// битая запись считается промахом
		logger(ctx).Warn("nearby cache entry is corrupted", "key", Key(marketID, radiusMiles, key))
		return nil, false, nil
	}

	return result, true, nil
}

func (c *NearbyCache) Set(
	ctx context.Context,
	marketID int64,
	radiusMiles float64,
	key value.SortKey,
	result []entity.NearbyEntity,
	ttl time.Duration,
) error {
	raw, err := jsoniter.Marshal(result)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to encode nearby result")
	}

	if err := c.client.Set(ctx, Key(marketID, radiusMiles, key), raw, ttl).Err(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to write nearby cache")
	}

	return nil
}

// InvalidateNearby удаляет все закешированные результаты. Изменение
// оценки одного рынка меняет выдачу любого поиска, куда он попадает,
// поэтому marketID используется только для лога.
func (c *NearbyCache) InvalidateNearby(ctx context.Context, marketID int64) error {
	var (
		cursor  uint64
		removed int64
	)

	for {
		keys, next, err := c.client.Scan(ctx, cursor, keyPrefix+"*", scanBatch).Result()
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to scan nearby cache")
		}

		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return domain.WrapError(err, errcodes.InternalServerError, "failed to delete nearby cache")
			}
			removed += n
		}

		if next == 0 {
			break
		}
		cursor = next
	}

	logger(ctx).Debug("nearby cache invalidated",
		logx.FieldMarketID, marketID,
		"removed", removed,
	)

	return nil
}
