package packages

import (
	"encoding/json"
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// DefaultRequired is the package set an interpreter is expected to carry.
var DefaultRequired = []string{
	"pylint",
	"flake8",
	"autopep8",
	"pytest",
	"matplotlib",
	"jupyter",
	"numpy",
	"scipy",
	"pandas",
}

// InterpreterStatus is the validated answer to "is the interpreter installed".
type InterpreterStatus struct {
	Installed bool   `json:"installed"`
	Version   string `json:"version,omitempty"`
}

// NotInstalled is the status used whenever the check itself fails
var NotInstalled = InterpreterStatus{}

// Package is one installed distribution as reported by the package manager
type Package struct {
	Package string `json:"package"`
	Version string `json:"version"`
}

// List is the set of installed packages
type List []Package

// Validate rejects entries without a name
func (l List) Validate() error {
	for i, pkg := range l {
		if strings.TrimSpace(pkg.Package) == "" {
			return fmt.Errorf("package entry %d has no name", i)
		}
	}
	return nil
}

// Has reports whether name is installed. Package names compare case-insensitively
// and treat '-' and '_' as the same character.
func (l List) Has(name string) bool {
	want := canonical(name)
	for _, pkg := range l {
		if canonical(pkg.Package) == want {
			return true
		}
	}
	return false
}

func canonical(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

// ParseList decodes `pip list --format=json` output. pip reports entries as
// {"name": ..., "version": ...}; the {"package": ...} spelling is accepted too.
func ParseList(data []byte) (List, error) {
	var raw []map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid package list: %w", err)
	}

	list := make(List, 0, len(raw))
	for _, entry := range raw {
		name, _ := entry["name"].(string)
		if name == "" {
			name, _ = entry["package"].(string)
		}
		version, _ := entry["version"].(string)
		list = append(list, Package{Package: name, Version: version})
	}
	if err := list.Validate(); err != nil {
		return nil, err
	}
	return list, nil
}

// Missing returns the required packages not present in installed, in required order.
func Missing(required []string, installed List) []string {
	var missing []string
	seen := make(map[string]bool)
	for _, name := range required {
		c := canonical(name)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		if !installed.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Present returns the packages from names that are installed
func Present(names []string, installed List) []string {
	var present []string
	for _, name := range names {
		if installed.Has(name) {
			present = append(present, name)
		}
	}
	return present
}

// PlatformFlags returns the extra install flags for goos. macOS installs go
// to the user site because the system interpreter is not writable.
func PlatformFlags(goos string) []string {
	if goos == "darwin" {
		return []string{"--user"}
	}
	return nil
}

// InstallArgs builds "install <flags> <pkgs>" for the current platform
func InstallArgs(pkgs []string) string {
	return installArgs(runtime.GOOS, pkgs)
}

func installArgs(goos string, pkgs []string) string {
	parts := append([]string{"install"}, PlatformFlags(goos)...)
	parts = append(parts, pkgs...)
	return strings.Join(parts, " ")
}

// UninstallArgs builds "uninstall -y <pkgs>"
func UninstallArgs(pkgs []string) string {
	return strings.Join(append([]string{"uninstall", "-y"}, pkgs...), " ")
}

// Names returns the installed package names sorted alphabetically
func (l List) Names() []string {
	names := make([]string, 0, len(l))
	for _, pkg := range l {
		names = append(names, pkg.Package)
	}
	sort.Strings(names)
	return names
}
