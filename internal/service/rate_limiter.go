package service

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/cloudmeet/agent-bot-go/internal/redis"
)

// rateLimitScript is a Lua script for sliding window rate limiting
var rateLimitScript = goredis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

local windowStart = now - window

redis.call('ZREMRANGEBYSCORE', key, '-inf', windowStart)

local count = redis.call('ZCARD', key)

if count >= limit then
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    local resetAt = 0
    if #oldest >= 2 then
        resetAt = tonumber(oldest[2]) + window
    else
        resetAt = now + window
    end
    return {0, resetAt}
end

redis.call('ZADD', key, now, now .. '-' .. math.random())
redis.call('EXPIRE', key, window + 10)

local resetAt = now + window
return {1, resetAt}
`)

// RateLimiter throttles chat commands per user so one holder cannot hammer
// the claim path or the remote reconciliation.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window}
}

// Allow checks whether the user may run another command now. On redis errors
// the request is allowed: losing throttling is better than locking the
// operator out of their own bot.
func (rl *RateLimiter) Allow(ctx context.Context, userID int64) (allowed bool, resetAt time.Time) {
	now := time.Now().Unix()
	key := redis.CommandLimitKey(userID)

	result, err := rateLimitScript.Run(
		ctx,
		rl.client.Client,
		[]string{key},
		now,
		int64(rl.window.Seconds()),
		rl.limit,
	).Int64Slice()

	if err != nil {
		log.Warn().Err(err).Int64("userId", userID).Msg("rate limit check failed, allowing request")
		return true, time.Now()
	}

	if len(result) != 2 {
		log.Warn().Int64("userId", userID).Msg("unexpected rate limit result, allowing request")
		return true, time.Now()
	}

	return result[0] == 1, time.Unix(result[1], 0)
}
