package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ocean-df/internal/walkthrough/model"
	"ocean-df/pkg/utils"

	"github.com/bytedance/sonic"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	STATE_CACHE_TTL       = 24 * time.Hour      // 本地缓存过期时间
	STATE_CACHE_REDIS_TTL = 30 * 24 * time.Hour // 发布记录在 Redis 中保留时间
)

var ErrNotFound = errors.New("state not found")

// StateCache 演练产出的本地 + Redis 两级缓存；rdb 为 nil 时只用本地缓存
type StateCache struct {
	tl         *zap.Logger
	localCache *cache.Cache
	redis      *redis.Client
}

func NewStateCache(tl *zap.Logger, rdb *redis.Client) *StateCache {
	return &StateCache{
		tl:         tl,
		localCache: cache.New(STATE_CACHE_TTL, 10*time.Minute),
		redis:      rdb,
	}
}

// Persistent Redis 未配置时状态只存在于当前进程
func (c *StateCache) Persistent() bool { return c.redis != nil }

func (c *StateCache) SaveAsset(ctx context.Context, asset model.PublishedAsset) error {
	return c.save(ctx, utils.PublishedAssetKey(asset.ChainID, asset.Publisher), asset)
}

// LoadAsset 读取 publisher 在该链上最近一次发布的数据集
func (c *StateCache) LoadAsset(ctx context.Context, chainID uint64, publisher string) (model.PublishedAsset, error) {
	var asset model.PublishedAsset
	err := c.load(ctx, utils.PublishedAssetKey(chainID, publisher), &asset)
	return asset, err
}

func (c *StateCache) SaveClaim(ctx context.Context, claim model.ClaimRecord) error {
	return c.save(ctx, utils.LastClaimKey(claim.ChainID, claim.Wallet), claim)
}

func (c *StateCache) LoadClaim(ctx context.Context, chainID uint64, wallet string) (model.ClaimRecord, error) {
	var claim model.ClaimRecord
	err := c.load(ctx, utils.LastClaimKey(chainID, wallet), &claim)
	return claim, err
}

func (c *StateCache) save(ctx context.Context, key string, v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	c.localCache.SetDefault(key, data)

	if c.redis == nil {
		return nil
	}
	if err := c.redis.Set(ctx, key, data, STATE_CACHE_REDIS_TTL).Err(); err != nil {
		// Redis 不可用时保留本地结果
		c.tl.Warn("redis set failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

func (c *StateCache) load(ctx context.Context, key string, v any) error {
	if data, ok := c.localCache.Get(key); ok {
		return sonic.Unmarshal(data.([]byte), v)
	}
	if c.redis == nil {
		return ErrNotFound
	}

	data, err := c.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	c.localCache.SetDefault(key, data)
	return sonic.Unmarshal(data, v)
}
