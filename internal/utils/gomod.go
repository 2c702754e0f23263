package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// ErrNoModule is returned when no go.mod encloses a directory
var ErrNoModule = errors.New("go.mod file not found")

// Module describes the Go module enclosing a scanned directory
type Module struct {
	Path      string
	GoVersion string
	Dir       string
}

// ParseModule reads the module declaration of a go.mod file
func ParseModule(goModPath string) (*Module, error) {
	cleanPath := filepath.Clean(goModPath)
	if filepath.Base(cleanPath) != "go.mod" {
		return nil, fmt.Errorf("file is not a go.mod file: %s", goModPath)
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read go.mod file: %w", err)
	}

	modFile, err := modfile.ParseLax(cleanPath, content, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go.mod file: %w", err)
	}
	if modFile.Module == nil {
		return nil, fmt.Errorf("no module declaration found in %s", cleanPath)
	}

	mod := &Module{Path: modFile.Module.Mod.Path, Dir: filepath.Dir(cleanPath)}
	if modFile.Go != nil {
		mod.GoVersion = modFile.Go.Version
	}
	return mod, nil
}

// FindModule walks up from startDir to the nearest go.mod and parses it
func FindModule(startDir string) (*Module, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		goModPath := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(goModPath); err == nil {
			return ParseModule(goModPath)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, ErrNoModule
		}
		dir = parent
	}
}
