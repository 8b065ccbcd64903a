package utils

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
)

// scratchFile is created and removed again to learn if a dir takes writes.
const scratchFile = ".gopostfix_write_test"

// DirCheckResult is what CheckDirStatus learned about a config dir.
type DirCheckResult struct {
	Exists   bool
	Writable bool
	Error    error
}

// FileExists reports whether path can be stat'ed on fsys.
func FileExists(fsys afero.Fs, path string) bool {
	ok, err := afero.Exists(fsys, path)
	return err == nil && ok
}

// EnsureDir creates dirPath and its parents, a no-op when present.
func EnsureDir(fsys afero.Fs, dirPath string) error {
	return errors.Wrapf(fsys.MkdirAll(dirPath, 0755), "mkdir %s", dirPath)
}

// SaveTOMLFile encodes data over filePath, truncating what was there.
func SaveTOMLFile(fsys afero.Fs, data any, filePath string) error {
	f, err := fsys.Create(filePath)
	if err != nil {
		log.Errorf("Cannot create %s: %v", filePath, err)
		return errors.Wrapf(err, "create %s", filePath)
	}
	enc := toml.NewEncoder(f)
	enc.Indent = ""
	if err := enc.Encode(data); err != nil {
		f.Close()
		return errors.Wrapf(err, "encode %s", filePath)
	}
	return f.Close()
}

// GetAbsolutePath is used for display only: "unknown" for an empty path,
// the input unchanged when it can't be made absolute.
func GetAbsolutePath(configPath string) string {
	switch {
	case configPath == "":
		return "unknown"
	case filepath.IsAbs(configPath):
		return configPath
	}
	if abs, err := filepath.Abs(configPath); err == nil {
		return abs
	}
	return configPath
}

// GetExecutableDir is the dir holding the running binary, one of the
// candidate config locations.
func GetExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", errors.Wrap(err, "locate executable")
	}
	return filepath.Dir(exe), nil
}

// CheckDirStatus creates dirPath when missing, then checks it takes writes.
func CheckDirStatus(fsys afero.Fs, dirPath string) DirCheckResult {
	var res DirCheckResult
	if isDir, _ := afero.IsDir(fsys, dirPath); isDir {
		res.Exists = true
		res.Writable = canWrite(fsys, dirPath)
		return res
	}
	if err := fsys.MkdirAll(dirPath, 0755); err != nil {
		log.Warnf("Skipping dir %s: %v", dirPath, err)
		res.Error = err
		return res
	}
	res.Exists = true
	res.Writable = canWrite(fsys, dirPath)
	return res
}

func canWrite(fsys afero.Fs, dirPath string) bool {
	scratch := filepath.Join(dirPath, scratchFile)
	f, err := fsys.Create(scratch)
	if err != nil {
		log.Warnf("Dir %s is read-only: %v", dirPath, err)
		return false
	}
	f.Close()
	_ = fsys.Remove(scratch)
	return true
}
