package caching

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// KEYS[1] value key, KEYS[2] version key
// ARGV[1] expected version, ARGV[2] value, ARGV[3] ttl in ms (0 = no expiry)
var setIfVersionScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2])
if current == false then
	current = ''
end
if current ~= ARGV[1] then
	return 0
end
local ttl = tonumber(ARGV[3])
if ttl > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ttl)
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

type RedisCachingService struct {
	client *redis.Client
}

func NewRedisCachingService(c *redis.Client) *RedisCachingService {
	return &RedisCachingService{
		client: c,
	}
}

func (svc *RedisCachingService) Get(ctx context.Context, key string) (string, error) {
	val, err := svc.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

// Version is "" until the key is first invalidated.
func (svc *RedisCachingService) Version(ctx context.Context, key string) (string, error) {
	val, err := svc.client.Get(ctx, versionKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

func (svc *RedisCachingService) SetIfVersion(ctx context.Context, key, version, value string, ttl time.Duration) (bool, error) {
	set, err := setIfVersionScript.Run(
		ctx,
		svc.client,
		[]string{key, versionKey(key)},
		version, value, ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return set == 1, nil
}

func (svc *RedisCachingService) Invalidate(ctx context.Context, key string) error {
	_, err := svc.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(key))
		pipe.Del(ctx, key)
		return nil
	})
	return err
}

func (svc *RedisCachingService) IsReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	return svc.client.Ping(ctx).Err()
}

func (svc *RedisCachingService) Name() string {
	return "CachingService[redis]"
}

func (svc *RedisCachingService) Shutdown(ctx context.Context) error {
	return svc.client.Close()
}
