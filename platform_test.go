package duckdb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckPlatform(t *testing.T) {
	require.NoError(t, checkPlatform("linux", "amd64"))
	require.NoError(t, checkPlatform("darwin", "arm64"))
	require.NoError(t, checkPlatform("windows", "amd64"))

	err := checkPlatform("freebsd", "riscv64")
	require.ErrorIs(t, err, ErrPlatformUnsupported)
	testError(t, err, "freebsd/riscv64")
}

func TestCompareVersion(t *testing.T) {
	tests := []struct {
		actual, expected string
		kind             ErrorKind
	}{
		{"v1.4.1", "", 0},
		{"v1.4.1", "v1.4.1", 0},
		{"v1.4.1", "1.4.1", 0},
		{"v1.4.1", "1.4", 0},
		{"v1.4.1-dev12", "1.4.1", 0},
		{"v1.4.10", "1.4.1", ErrorKindVersionMismatch},
		{"v1.3.2", "v1.4", ErrorKindVersionMismatch},
		{"", "v1.4", ErrorKindLibraryMissing},
		{"", "", ErrorKindLibraryMissing},
	}
	for _, tt := range tests {
		err := compareVersion(tt.actual, tt.expected)
		if tt.kind == 0 {
			require.NoError(t, err, "%s vs %s", tt.actual, tt.expected)
			continue
		}
		require.True(t, IsKind(err, tt.kind), "%s vs %s: %v", tt.actual, tt.expected, err)
	}
}

func TestLibraryVersion(t *testing.T) {
	version := LibraryVersion()
	require.NotEmpty(t, version)
	require.NoError(t, CheckLibraryVersion(version))
	require.True(t, IsKind(CheckLibraryVersion("v0.0.1"), ErrorKindVersionMismatch))
}
