package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Launch configuration names
const (
	LaunchCurrentFile = "Python: Current File"
	LaunchStopAtEntry = "Python: Current File (stop at entry)"
)

// LaunchConfiguration is one entry of a launch.json "configurations" array
type LaunchConfiguration struct {
	Type        string `json:"type" yaml:"type"`
	Request     string `json:"request" yaml:"request"`
	Name        string `json:"name" yaml:"name"`
	Program     string `json:"program" yaml:"program"`
	Console     string `json:"console" yaml:"console"`
	StopOnEntry bool   `json:"stopOnEntry" yaml:"stopOnEntry"`
}

// DebugService builds debugger launch templates
type DebugService struct{}

// NewDebugService creates a new debug service
func NewDebugService() *DebugService {
	return &DebugService{}
}

// Launch returns the template for running file under the debugger
func (s *DebugService) Launch(file string, stopOnEntry bool) LaunchConfiguration {
	name := LaunchCurrentFile
	if stopOnEntry {
		name = LaunchStopAtEntry
	}
	return LaunchConfiguration{
		Type:        "python",
		Request:     "launch",
		Name:        name,
		Program:     file,
		Console:     "integratedTerminal",
		StopOnEntry: stopOnEntry,
	}
}

// WriteLaunch adds cfg to the launch.json at path, replacing any
// configuration with the same name. The file is created when missing.
func (s *DebugService) WriteLaunch(path string, cfg LaunchConfiguration) error {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		data = []byte(`{"version":"0.2.0","configurations":[]}`)
	}

	updated, err := upsertLaunch(data, cfg)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, updated, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// upsertLaunch accepts JSONC input; comments are not kept in the output
func upsertLaunch(data []byte, cfg LaunchConfiguration) ([]byte, error) {
	data = jsonc.ToJSON(data)
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, fmt.Errorf("launch file is not a JSON object")
	}

	configs := gjson.GetBytes(data, "configurations")
	if configs.Exists() && !configs.IsArray() {
		return nil, fmt.Errorf("\"configurations\" is not an array")
	}

	path := "configurations.-1"
	for i, value := range configs.Array() {
		if value.Get("name").String() == cfg.Name {
			path = "configurations." + strconv.Itoa(i)
			break
		}
	}

	out, err := sjson.SetBytes(data, path, cfg)
	if err != nil {
		return nil, err
	}
	if !gjson.GetBytes(out, "version").Exists() {
		if out, err = sjson.SetBytes(out, "version", "0.2.0"); err != nil {
			return nil, err
		}
	}
	return pretty.PrettyOptions(out, &pretty.Options{Width: 80, Indent: "    "}), nil
}
