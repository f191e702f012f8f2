package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolOptionsDefaults(t *testing.T) {
	cases := map[string]struct {
		in   PoolOptions
		want PoolOptions
	}{
		"zero":          {PoolOptions{}, PoolOptions{MaxIdleConns: 2, MaxOpenConns: 4}},
		"explicit":      {PoolOptions{MaxIdleConns: 3, MaxOpenConns: 8}, PoolOptions{MaxIdleConns: 3, MaxOpenConns: 8}},
		"idle over max": {PoolOptions{MaxIdleConns: 5, MaxOpenConns: 1}, PoolOptions{MaxIdleConns: 1, MaxOpenConns: 1}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.in.withDefaults())
		})
	}
}
