package ioc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowOrigin(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name   string
		origin string
		want   bool
	}{
		{
			name:   "本地开发环境",
			origin: "http://localhost:3000",
			want:   true,
		},
		{
			name:   "书店自己的域名",
			origin: "https://www.bookstore.ecodeclub.com",
			want:   true,
		},
		{
			name:   "其他域名",
			origin: "https://evil.example.com",
			want:   false,
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, allowOrigin(tc.origin))
		})
	}
}
