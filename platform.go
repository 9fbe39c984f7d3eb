package duckdb

import (
	"runtime"
	"strings"

	"github.com/columnar-dev/go-duckdb-marshal/internal/mapping"
)

// supportedPlatforms lists the GOOS/GOARCH pairs with a prebuilt library.
var supportedPlatforms = map[string]bool{
	"linux/amd64":   true,
	"linux/arm64":   true,
	"darwin/amd64":  true,
	"darwin/arm64":  true,
	"windows/amd64": true,
}

func checkPlatform(goos, goarch string) error {
	if !supportedPlatforms[goos+"/"+goarch] {
		return newErrorf(ErrorKindPlatformUnsupported, "no native library for %s/%s", goos, goarch)
	}
	return nil
}

// LibraryVersion returns the version reported by the linked library, such as "v1.4.1".
func LibraryVersion() string {
	return mapping.LibraryVersion()
}

// CheckLibraryVersion verifies the linked library. The leading "v" is
// optional on both sides, and expected may name only a prefix such as "1.4".
func CheckLibraryVersion(expected string) error {
	if err := checkPlatform(runtime.GOOS, runtime.GOARCH); err != nil {
		return err
	}
	return compareVersion(LibraryVersion(), expected)
}

func compareVersion(actual, expected string) error {
	if actual == "" {
		return newError(ErrorKindLibraryMissing, "the native library reported no version")
	}
	if expected == "" {
		return nil
	}
	a := strings.TrimPrefix(actual, "v")
	e := strings.TrimPrefix(expected, "v")
	if a == e || strings.HasPrefix(a, e+".") || strings.HasPrefix(a, e+"-") {
		return nil
	}
	return newErrorf(ErrorKindVersionMismatch, "library version %s does not match expected %s", actual, expected)
}
