package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pavitra93/menulink/shared/storage"
)

func TestMaxUploadBytesIsCapped(t *testing.T) {
	cases := map[string]struct {
		env  string
		want int64
	}{
		"default":      {"", storage.MaxPDFBytes},
		"lower":        {"1048576", 1 << 20},
		"above limit":  {"104857600", storage.MaxPDFBytes},
		"non-positive": {"0", storage.MaxPDFBytes},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("MAX_UPLOAD_BYTES", tc.env)
			assert.Equal(t, tc.want, GetGatewayConfig().MaxUploadBytes)
		})
	}
}
