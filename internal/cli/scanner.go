package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/toyz/addendum/internal/utils"
)

// ScanTarget is a directory to scan and whether to descend into it
type ScanTarget struct {
	Dir       string
	Recursive bool
}

// ParseTargets turns arguments into absolute scan targets. Go-style patterns
// such as "./..." scan recursively.
func ParseTargets(args []string) ([]ScanTarget, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	targets := make([]ScanTarget, 0, len(args))
	for _, arg := range args {
		dir, recursive := arg, false
		if arg == "..." || strings.HasSuffix(arg, "/...") {
			dir, recursive = strings.TrimSuffix(strings.TrimSuffix(arg, "..."), "/"), true
			if dir == "" {
				dir = "."
			}
		}

		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("path resolution %s: %w", dir, err)
		}
		targets = append(targets, ScanTarget{Dir: abs, Recursive: recursive})
	}
	return targets, nil
}

// PackagePath builds the import path of dir from its enclosing module
func PackagePath(dir string) (string, error) {
	mod, err := utils.FindModule(dir)
	if err != nil {
		return "", err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(mod.Dir, abs)
	if err != nil {
		return "", fmt.Errorf("failed to calculate relative path: %w", err)
	}

	if rel = filepath.ToSlash(rel); rel == "." {
		return mod.Path, nil
	}
	return mod.Path + "/" + rel, nil
}
