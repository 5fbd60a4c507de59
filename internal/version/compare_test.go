package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConfigCompatibility(t *testing.T) {
	tests := []struct {
		name          string
		binaryVersion string
		configVersion string
		expectError   bool
		errorContains string
	}{
		{
			name:          "exact match",
			binaryVersion: "1.2.0",
			configVersion: "1.2.0",
		},
		{
			name:          "config patch higher",
			binaryVersion: "1.2.0",
			configVersion: "1.2.5",
		},
		{
			name:          "older config minor",
			binaryVersion: "1.3.0",
			configVersion: "1.2.4",
		},
		{
			name:          "v prefix",
			binaryVersion: "v1.2.0",
			configVersion: "v1.2.0",
		},
		{
			name:          "empty config version",
			binaryVersion: "1.2.0",
			configVersion: "",
		},
		{
			name:          "development binary",
			binaryVersion: "main",
			configVersion: "9.9.9",
		},
		{
			name:          "newer config minor",
			binaryVersion: "1.2.0",
			configVersion: "1.3.0",
			expectError:   true,
			errorContains: "config requires 1.3.x",
		},
		{
			name:          "major mismatch",
			binaryVersion: "2.0.0",
			configVersion: "1.2.0",
			expectError:   true,
			errorContains: "major version mismatch",
		},
		{
			name:          "invalid config version",
			binaryVersion: "1.2.0",
			configVersion: "not-a-version",
			expectError:   true,
			errorContains: "invalid config version",
		},
		{
			name:          "invalid binary version",
			binaryVersion: "abc",
			configVersion: "1.2.0",
			expectError:   true,
			errorContains: "invalid binary version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckConfigCompatibility(tt.binaryVersion, tt.configVersion)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestGetVersion(t *testing.T) {
	original := Version
	defer func() { Version = original }()

	Version = "v1.4.2"
	assert.Equal(t, "v1.4.2", GetVersion())
}
