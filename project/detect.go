package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Type classifies a project by language ecosystem.
type Type string

const (
	TypePython  Type = "python"
	TypeNode    Type = "node"
	TypeRust    Type = "rust"
	TypeGo      Type = "go"
	TypePHP     Type = "php"
	TypeUnknown Type = "unknown"
)

// PackageManager identifies the tool that installs dependencies.
type PackageManager string

const (
	ManagerUV       PackageManager = "uv"
	ManagerPip      PackageManager = "pip"
	ManagerPoetry   PackageManager = "poetry"
	ManagerPipenv   PackageManager = "pipenv"
	ManagerNPM      PackageManager = "npm"
	ManagerYarn     PackageManager = "yarn"
	ManagerPNPM     PackageManager = "pnpm"
	ManagerBun      PackageManager = "bun"
	ManagerCargo    PackageManager = "cargo"
	ManagerGo       PackageManager = "go"
	ManagerComposer PackageManager = "composer"
	ManagerUnknown  PackageManager = "unknown"
)

// Info is the detection result for one directory.
type Info struct {
	Root           string         `json:"root"`
	Type           Type           `json:"type"`
	PackageManager PackageManager `json:"package_manager"`
	ManifestFile   string         `json:"manifest_file,omitempty"`
	LockFile       string         `json:"lock_file,omitempty"`
	HasEnvFile     bool           `json:"has_env_file"`
}

// marker ties a file name to the manager it implies; an empty manager
// means the file alone is ambiguous and needs lockfile disambiguation.
type marker struct {
	file    string
	manager PackageManager
}

var (
	pythonMarkers = []marker{
		{"pyproject.toml", ""},
		{"uv.lock", ManagerUV},
		{"poetry.lock", ManagerPoetry},
		{"Pipfile", ManagerPipenv},
		{"Pipfile.lock", ManagerPipenv},
		{"requirements.txt", ManagerPip},
		{"setup.py", ManagerPip},
		{"setup.cfg", ManagerPip},
	}
	nodeMarkers = []marker{
		{"package.json", ""},
		{"bun.lockb", ManagerBun},
		{"pnpm-lock.yaml", ManagerPNPM},
		{"yarn.lock", ManagerYarn},
		{"package-lock.json", ManagerNPM},
	}
	rustMarkers = []marker{
		{"Cargo.toml", ManagerCargo},
		{"Cargo.lock", ManagerCargo},
	}
	goMarkers = []marker{
		{"go.mod", ManagerGo},
		{"go.sum", ManagerGo},
	}
	phpMarkers = []marker{
		{"composer.json", ManagerComposer},
		{"composer.lock", ManagerComposer},
	}
)

// lockFiles maps each manager to the lock file it writes.
var lockFiles = map[PackageManager]string{
	ManagerUV:       "uv.lock",
	ManagerPoetry:   "poetry.lock",
	ManagerPipenv:   "Pipfile.lock",
	ManagerNPM:      "package-lock.json",
	ManagerYarn:     "yarn.lock",
	ManagerPNPM:     "pnpm-lock.yaml",
	ManagerBun:      "bun.lockb",
	ManagerComposer: "composer.lock",
	ManagerCargo:    "Cargo.lock",
	ManagerGo:       "go.sum",
}

// manifestCandidates lists manifest files per type, in preference order.
var manifestCandidates = map[Type][]string{
	TypePython: {"pyproject.toml", "setup.py", "requirements.txt"},
	TypeNode:   {"package.json"},
	TypeRust:   {"Cargo.toml"},
	TypeGo:     {"go.mod"},
	TypePHP:    {"composer.json"},
}

// Detect inspects dir and classifies the project. An unrecognizable
// directory yields TypeUnknown rather than an error; a missing directory
// is an error.
func Detect(dir string) (*Info, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve project path: %w", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("project path is not a directory: %s", root)
	}

	checks := []struct {
		typ       Type
		markers   []marker
		refine    func(string) PackageManager
	}{
		{TypePython, pythonMarkers, detectPythonManager},
		{TypeNode, nodeMarkers, detectNodeManager},
		{TypeRust, rustMarkers, nil},
		{TypeGo, goMarkers, nil},
		{TypePHP, phpMarkers, nil},
	}

	for _, c := range checks {
		mk, found := findMarker(root, c.markers)
		if !found {
			continue
		}
		manager := mk.manager
		if c.refine != nil {
			manager = c.refine(root)
		}
		if manager == "" {
			manager = ManagerUnknown
		}
		return buildInfo(root, c.typ, manager), nil
	}

	return &Info{Root: root, Type: TypeUnknown, PackageManager: ManagerUnknown}, nil
}

func findMarker(root string, markers []marker) (marker, bool) {
	for _, m := range markers {
		if fileExists(filepath.Join(root, m.file)) {
			return m, true
		}
	}
	return marker{}, false
}

// detectPythonManager resolves the Python tool: lock files first, then
// pyproject.toml hints, then requirements.txt, defaulting to uv.
func detectPythonManager(root string) PackageManager {
	switch {
	case fileExists(filepath.Join(root, "uv.lock")):
		return ManagerUV
	case fileExists(filepath.Join(root, "poetry.lock")):
		return ManagerPoetry
	case fileExists(filepath.Join(root, "Pipfile.lock")), fileExists(filepath.Join(root, "Pipfile")):
		return ManagerPipenv
	}

	if data, err := os.ReadFile(filepath.Join(root, "pyproject.toml")); err == nil {
		content := string(data)
		if strings.Contains(content, "[tool.poetry]") {
			return ManagerPoetry
		}
		return ManagerUV
	}

	if fileExists(filepath.Join(root, "requirements.txt")) {
		return ManagerPip
	}
	return ManagerUV
}

// detectNodeManager resolves the Node tool: lock files first, then the
// package.json packageManager field, defaulting to npm.
func detectNodeManager(root string) PackageManager {
	switch {
	case fileExists(filepath.Join(root, "bun.lockb")):
		return ManagerBun
	case fileExists(filepath.Join(root, "pnpm-lock.yaml")):
		return ManagerPNPM
	case fileExists(filepath.Join(root, "yarn.lock")):
		return ManagerYarn
	case fileExists(filepath.Join(root, "package-lock.json")):
		return ManagerNPM
	}

	if data, err := os.ReadFile(filepath.Join(root, "package.json")); err == nil {
		var pkg struct {
			PackageManager string `json:"packageManager"`
		}
		if json.Unmarshal(data, &pkg) == nil {
			switch {
			case strings.HasPrefix(pkg.PackageManager, "bun"):
				return ManagerBun
			case strings.HasPrefix(pkg.PackageManager, "pnpm"):
				return ManagerPNPM
			case strings.HasPrefix(pkg.PackageManager, "yarn"):
				return ManagerYarn
			}
		}
	}
	return ManagerNPM
}

func buildInfo(root string, typ Type, manager PackageManager) *Info {
	info := &Info{Root: root, Type: typ, PackageManager: manager}

	for _, manifest := range manifestCandidates[typ] {
		if fileExists(filepath.Join(root, manifest)) {
			info.ManifestFile = manifest
			break
		}
	}
	if lock, ok := lockFiles[manager]; ok && fileExists(filepath.Join(root, lock)) {
		info.LockFile = lock
	}
	info.HasEnvFile = fileExists(filepath.Join(root, ".env"))
	return info
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
