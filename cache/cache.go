// Package cache keeps rendered chart bodies keyed by chart, query and
// dataset fingerprint.
package cache

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hivewatch/beedash/aggregate"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "beedash:chart:"

// Cache stores rendered bodies. Implementations never fail the caller: a miss
// or a backend error both read as "not cached".
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
}

// Key derives the cache key for a chart. States are normalized so that the
// same selection in a different order or case hits the same entry. The period
// keeps its case since it appears in chart titles.
func Key(name string, q aggregate.Query, fingerprint string) string {
	seen := map[string]bool{}
	var states []string
	for _, s := range q.States {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		states = append(states, s)
	}
	sort.Strings(states)

	var b strings.Builder
	b.WriteString(keyPrefix)
	b.WriteString(name)
	b.WriteString(":")
	b.WriteString(fingerprint)
	b.WriteString(":")
	b.WriteString(strconv.Itoa(q.Year))
	b.WriteString(":")
	b.WriteString(strings.Join(states, ","))
	b.WriteString(":")
	b.WriteString(strings.TrimSpace(q.Period))
	return b.String()
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (Nop) Set(context.Context, string, []byte)        {}

// Redis stores bodies with a TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, ttl time.Duration, log *logrus.Logger) *Redis {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Redis{client: client, ttl: ttl, log: log}
}

// Dial connects to addr. The connection is lazy, so an unreachable server
// only shows up as logged misses.
func Dial(addr, password string, db int, ttl time.Duration, log *logrus.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	return NewRedis(client, ttl, log)
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	body, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		r.log.WithError(err).WithField("key", key).Warn("chart cache read failed")
		return nil, false
	}
	return body, true
}

func (r *Redis) Set(ctx context.Context, key string, body []byte) {
	if err := r.client.Set(ctx, key, body, r.ttl).Err(); err != nil {
		r.log.WithError(err).WithField("key", key).Warn("chart cache write failed")
	}
}

func (r *Redis) Close() error {
	return r.client.Close()
}
