// Package config provides configuration, defaults and path management.
package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	// AppName is the application name.
	AppName = "flagpic"

	// CacheDirName is the cache directory name under the user's home.
	CacheDirName = ".flagpic"

	// ConfigFileName is the optional config file looked up in the working directory.
	ConfigFileName = "flagpic.yaml"

	// DefaultFlagsDir is the local flag store directory.
	DefaultFlagsDir = "assets/flags"

	// DefaultTemplatePath is the profile-picture template image.
	DefaultTemplatePath = "assets/profile-pic-template.png"

	// DefaultOutputDir is where generated profile pictures are written.
	DefaultOutputDir = "profilepics"

	// DefaultStore is the flag store backend.
	DefaultStore = "local"

	// DefaultRemoteBaseURL is the root of the flag-icon-css repository.
	DefaultRemoteBaseURL = "https://raw.githubusercontent.com/lipis/flag-icon-css/master"

	// DefaultAspectRatio is the remote flag aspect ratio.
	DefaultAspectRatio = "1x1"

	// DefaultFlagWidth and DefaultFlagHeight are the pasted flag size in pixels.
	DefaultFlagWidth  = 630
	DefaultFlagHeight = 630

	// DefaultFlagX and DefaultFlagY are the top-left corner of the pasted flag.
	DefaultFlagX = 251
	DefaultFlagY = 304

	// DefaultConcurrency is the default batch generation concurrency.
	DefaultConcurrency = 4

	// MaxConcurrency is the maximum allowed concurrency.
	MaxConcurrency = 16

	// DefaultCacheTTLDays is how long a downloaded flag stays fresh.
	DefaultCacheTTLDays = 30

	// DefaultHTTPTimeout bounds a single remote request.
	DefaultHTTPTimeout = 30 * time.Second

	// FlagCacheDirName is the remote flag cache subdirectory name.
	FlagCacheDirName = "flags"

	// FlagCacheIndexFileName is the remote flag cache index file name.
	FlagCacheIndexFileName = "index.json"

	// ManifestFileName is the run summary written next to generated pictures.
	ManifestFileName = "manifest.json"

	// UserAgent is sent with remote requests.
	UserAgent = "flagpic/1.0"
)

// DefaultCacheDir returns the default cache directory path.
func DefaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory
		home = "."
	}
	return filepath.Join(home, CacheDirName, "cache")
}

// FlagCacheDir returns the directory holding downloaded flags.
func FlagCacheDir(cacheDir string) string {
	return filepath.Join(cacheDir, FlagCacheDirName)
}

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
