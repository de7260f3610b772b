package cache

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/hivewatch/beedash/aggregate"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	base := Key("trend", aggregate.Query{Year: 2020, States: []string{"Texas", "california"}}, "abc")

	tests := []struct {
		name string
		q    aggregate.Query
		fp   string
		same bool
	}{
		{"reordered and cased", aggregate.Query{Year: 2020, States: []string{"California", " texas", "TEXAS"}}, "abc", true},
		{"other year", aggregate.Query{Year: 2021, States: []string{"Texas", "California"}}, "abc", false},
		{"other fingerprint", aggregate.Query{Year: 2020, States: []string{"Texas", "California"}}, "def", false},
		{"fewer states", aggregate.Query{Year: 2020, States: []string{"Texas"}}, "abc", false},
		{"with period", aggregate.Query{Year: 2020, States: []string{"Texas", "California"}, Period: "Q1"}, "abc", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Key("trend", tt.q, tt.fp)
			assert.Equal(t, tt.same, got == base, "%s vs %s", got, base)
		})
	}
	assert.NotEqual(t,
		Key("lost", aggregate.Query{Year: 2020, Period: "Q1"}, "abc"),
		Key("lost", aggregate.Query{Year: 2020, Period: "q1"}, "abc"))
	assert.NotEqual(t, base, Key("causes", aggregate.Query{Year: 2020, States: []string{"Texas", "california"}}, "abc"))
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	c.Set(context.Background(), "k", []byte("v"))
	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestRedis_unreachable(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	r := Dial("127.0.0.1:1", "", 0, time.Minute, log)
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	r.Set(ctx, "k", []byte("v"))
	_, ok := r.Get(ctx, "k")
	assert.False(t, ok)
}
