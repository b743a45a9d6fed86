// Package serverinfo records the running web server so other commands can
// find it.
package serverinfo

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/gops/goprocess"
	"github.com/inovacc/starcards/internal/application"
)

// FileName is the name of the server info file in the application directory
const FileName = "server.json"

// ErrNoServerInfo indicates no server info file exists
var ErrNoServerInfo = errors.New("no server info file")

// Info contains information about a running web server
type Info struct {
	Address   string    `json:"address"`
	URL       string    `json:"url"`
	Port      int       `json:"port"`
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
}

// Dir returns the default directory holding the server info file.
func Dir() (string, error) {
	return application.GetApplicationDirectory()
}

// Path returns the server info file path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Write records the current process as the server listening on host:port.
func Write(dir, host string, port int) (*Info, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create server info directory: %w", err)
	}

	address := net.JoinHostPort(host, strconv.Itoa(port))

	info := &Info{
		Address:   address,
		URL:       "http://" + address,
		Port:      port,
		PID:       os.Getpid(),
		StartedAt: time.Now(),
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal server info: %w", err)
	}

	if err := os.WriteFile(Path(dir), data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write server info file: %w", err)
	}

	return info, nil
}

// Read reads the server info file if it exists.
func Read(dir string) (*Info, error) {
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoServerInfo
		}

		return nil, fmt.Errorf("failed to read server info: %w", err)
	}

	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse server info: %w", err)
	}

	return &info, nil
}

// Remove deletes the server info file. Errors are ignored.
func Remove(dir string) {
	_ = os.Remove(Path(dir))
}

// Running returns the recorded server when its process is still alive.
// A stale file left by a dead process is removed.
func Running(dir string) *Info {
	info, err := Read(dir)
	if err != nil {
		return nil
	}

	if IsProcessRunning(info.PID) {
		return info
	}

	Remove(dir)

	return nil
}

// Process describes a running Go process as reported by gops.
type Process struct {
	PID       int
	PPID      int
	Exec      string
	Path      string
	BuildInfo string
}

// FindProcess looks up a running Go process by pid.
func FindProcess(pid int) (Process, bool) {
	if pid <= 0 {
		return Process{}, false
	}

	for _, p := range goprocess.FindAll() {
		if p.PID == pid {
			return Process{
				PID:       p.PID,
				PPID:      p.PPID,
				Exec:      p.Exec,
				Path:      p.Path,
				BuildInfo: p.BuildVersion,
			}, true
		}
	}

	return Process{}, false
}

// IsProcessRunning reports whether a Go process with pid is alive.
func IsProcessRunning(pid int) bool {
	_, ok := FindProcess(pid)

	return ok
}
