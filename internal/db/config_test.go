package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigAuth(t *testing.T) {
	cfg := Config{Namespace: "wdtable", Database: "tables", Username: "reader", Password: "secret"}

	tests := []struct {
		level     string
		namespace string
		database  string
	}{
		{"root", "", ""},
		{"database", "wdtable", "tables"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg.AuthLevel = tt.level
			auth := cfg.auth()
			assert.Equal(t, "reader", auth.Username)
			assert.Equal(t, "secret", auth.Password)
			assert.Equal(t, tt.namespace, auth.Namespace)
			assert.Equal(t, tt.database, auth.Database)
		})
	}
}
