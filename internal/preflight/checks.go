package preflight

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"mediabox/internal/config"
	"mediabox/internal/registry"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(cfg *config.Config, reg *registry.Registry) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("Log directory", cfg.Paths.LogDir)}
	if cfg.History.Enabled {
		results = append(results, CheckDirectoryAccess("History directory", filepath.Dir(cfg.Paths.HistoryDB)))
	}
	if reg != nil {
		if cfg.Transcode.SubtitleEncoder != "" {
			results = append(results, CheckEncoder(reg, cfg.Transcode.SubtitleEncoder))
		}
		if cfg.Transcode.OutputFormat != "" {
			results = append(results, CheckMuxer(reg, cfg.Transcode.OutputFormat))
		}
	}
	return results
}

// Failures returns the results that did not pass.
func Failures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckOutputPath verifies that a new file can be created at path. An
// existing regular file must itself be writable.
func CheckOutputPath(path string) Result {
	const name = "Output path"

	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	case err == nil:
		if err := unix.Access(path, unix.W_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: not writable: %v)", path, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be replaced)", path)}
	case !errors.Is(err, os.ErrNotExist):
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}

	dir := CheckDirectoryAccess(name, filepath.Dir(path))
	if dir.Passed {
		dir.Detail = fmt.Sprintf("%s (writable)", path)
	}
	return dir
}

// CheckEncoder verifies that a codec encoder with the given name is registered.
func CheckEncoder(reg *registry.Registry, name string) Result {
	name = strings.TrimSpace(name)
	label := "Encoder " + name
	if _, err := reg.Encoder(name); err != nil {
		return Result{Name: label, Detail: err.Error()}
	}
	return Result{Name: label, Passed: true, Detail: "registered"}
}

// CheckMuxer verifies that a container muxer with the given name is registered.
func CheckMuxer(reg *registry.Registry, name string) Result {
	name = strings.TrimSpace(name)
	label := "Muxer " + name
	if _, err := reg.Muxer(name); err != nil {
		return Result{Name: label, Detail: err.Error()}
	}
	return Result{Name: label, Passed: true, Detail: "registered"}
}
