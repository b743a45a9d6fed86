package application

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

const (
	// AppName is the application name used for directories and identification
	AppName = "starcards"

	// AppExeName is the executable name (without extension)
	AppExeName = "starcards"

	// AppExeNameWindows is the executable name on Windows
	AppExeNameWindows = "starcards.exe"

	// EnvHome overrides the application directory when set
	EnvHome = "STARCARDS_HOME"
)

var (
	once   sync.Once
	appDir string
	errDir error
)

// GetApplicationDirectory returns the starcards configuration directory path.
// Linux: ~/.config/starcards (via os.UserConfigDir)
// Windows: C:\Users\{username}\AppData\Local\starcards (via os.UserCacheDir)
// The directory is created on first use.
func GetApplicationDirectory() (string, error) {
	once.Do(lazyLoad)

	if errDir != nil {
		return "", errDir
	}

	return appDir, nil
}

// ExecutableName returns the platform specific executable name.
func ExecutableName() string {
	if runtime.GOOS == "windows" {
		return AppExeNameWindows
	}

	return AppExeName
}

func lazyLoad() {
	if dir := os.Getenv(EnvHome); dir != "" {
		appDir = dir
		errDir = ensureDir(appDir)

		return
	}

	var (
		baseDir string
		err     error
	)

	switch runtime.GOOS {
	case "windows":
		// Windows: use AppData\Local (via UserCacheDir)
		baseDir, err = os.UserCacheDir()
	default:
		// Linux/others: use ~/.config (via UserConfigDir)
		baseDir, err = os.UserConfigDir()
	}

	if err != nil {
		errDir = fmt.Errorf("failed to get config directory: %w", err)

		return
	}

	appDir = filepath.Join(baseDir, AppName)
	errDir = ensureDir(appDir)
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create application directory: %w", err)
	}

	return nil
}
