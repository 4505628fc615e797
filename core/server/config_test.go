package server_test

import (
	"testing"

	"channel-manager/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Addr(t *testing.T) {
	tests := []struct {
		name string
		port string
		want string
	}{
		{"Bare", "8080", ":8080"},
		{"WithColon", ":9090", ":9090"},
		{"Empty", "", ":8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, server.Config{Port: tt.port}.Addr())
		})
	}
}

func TestConfig_HasApiKey(t *testing.T) {
	assert.False(t, server.Config{}.HasApiKey())
	assert.False(t, server.Config{ApiKey: "  "}.HasApiKey())
	assert.True(t, server.Config{ApiKey: "secret"}.HasApiKey())
}
