package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/TechTorque-2025/Agent-Bot/internal/db"
)

// KEYS[1] guard, KEYS[2] list; ARGV value, max length, ttl seconds.
const appendCappedScript = `
if redis.call('EXISTS', KEYS[1]) == 0 then
  return 0
end
redis.call('RPUSH', KEYS[2], ARGV[1])
redis.call('LTRIM', KEYS[2], -tonumber(ARGV[2]), -1)
local ttl = tonumber(ARGV[3])
if ttl > 0 then
  redis.call('EXPIRE', KEYS[1], ttl)
  redis.call('EXPIRE', KEYS[2], ttl)
end
return 1
`

// AppendCapped atomically appends to a bounded list guarded by another key.
func (s *Store) AppendCapped(
	ctx context.Context, guardKey, key string, value []byte, maxLen int, ttl time.Duration,
) (bool, error) {
	if maxLen <= 0 {
		maxLen = 1
	}
	args := []string{string(value), strconv.Itoa(maxLen), strconv.FormatInt(ttlSeconds(ttl), 10)}

	n, err := s.appendScript.Exec(ctx, s.client, []string{guardKey, key}, args).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpEval, Err: err}
	}
	return n == 1, nil
}

// LRange returns raw list entries.
func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	cmd := s.b().Lrange().Key(key).Start(start).Stop(stop).Build()
	vals, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpLRange, Err: err}
	}

	out := make([][]byte, 0, len(vals))
	for _, v := range vals {
		b, err := v.AsBytes()
		if err != nil {
			return nil, &db.Error{Op: db.OpLRange, Err: err}
		}
		out = append(out, b)
	}
	return out, nil
}
