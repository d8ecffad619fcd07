package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_ValidatePort(t *testing.T) {
	c := &Config{Port: "", Env: "development"}
	assert.Error(t, c.Validate())

	c.Port = "8390"
	assert.NoError(t, c.Validate())
}

func TestConfig_ValidateProduction(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		dbPassword  string
		jwtSecret   string
		expectError bool
	}{
		{"Production with default password", "production", "password", "secure-secret-at-least-32-chars-long", true},
		{"Production with empty password", "production", "", "secure-secret-at-least-32-chars-long", true},
		{"Production with strong password", "production", "s3cure-pa55word", "secure-secret-at-least-32-chars-long", false},
		{"Prod with short JWT secret", "prod", "s3cure-pa55word", "too-short", true},
		{"Prod with empty JWT secret warns but passes", "prod", "s3cure-pa55word", "", false},
		{"Development with default password", "development", "password", "", false},
		{"Test env with defaults", "test", "password", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				Port:       "8390",
				Env:        tt.env,
				DBPassword: tt.dbPassword,
				JWTSecret:  tt.jwtSecret,
				DBSSLMode:  "require",
			}

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
