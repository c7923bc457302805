package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Deep145757/teams-ai/pkg/models"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of an action manifest.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// promptActionFiles are the manifest names looked up inside a prompt folder,
// in order of preference.
var promptActionFiles = []string{"actions.json", "actions.yaml", "actions.yml"}

type manifest struct {
	Actions []models.ChatCompletionAction `json:"actions" yaml:"actions"`
}

// Parse decodes a manifest: either a bare list of actions or an object
// with an "actions" list. Unknown fields are rejected.
func Parse(data []byte, format Format) ([]models.ChatCompletionAction, error) {
	switch format {
	case FormatJSON:
		return parseJSON(data)
	case FormatYAML:
		return parseYAML(data)
	default:
		return nil, models.NewErrorf(models.ErrCodeDecode, "unsupported manifest format %q", format)
	}
}

// LoadFile reads a manifest, picking the format from the file extension.
func LoadFile(path string) ([]models.ChatCompletionAction, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, models.NewErrorf(models.ErrCodeNotFound, "read manifest %s", path).WithCause(err)
	}

	actions, err := Parse(data, format)
	if err != nil {
		var actErr *models.ActionError
		if errors.As(err, &actErr) {
			actErr.WithDetail("path", path)
		}
		return nil, err
	}
	return actions, nil
}

// FormatFor maps a file extension to a manifest format.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", models.NewErrorf(models.ErrCodeDecode, "unsupported manifest extension %q", filepath.Ext(path)).
			WithDetail("path", path)
	}
}

// LoadPromptFolder loads the actions manifest of every prompt under dir.
// Each prompt is a sub-directory; prompts without a manifest are skipped.
// Unreadable or malformed manifests are logged and skipped.
func LoadPromptFolder(dir string, logger *slog.Logger) (map[string][]models.ChatCompletionAction, error) {
	if logger == nil {
		logger = slog.Default()
	}

	prompts := make(map[string][]models.ChatCompletionAction)

	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug("prompts folder does not exist, skipping", "dir", dir)
		return prompts, nil
	}
	if err != nil {
		return nil, models.NewErrorf(models.ErrCodeNotFound, "read prompts folder %s", dir).WithCause(err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()

		path, ok := findManifest(filepath.Join(dir, name))
		if !ok {
			continue
		}

		actions, err := LoadFile(path)
		if err != nil {
			logger.Warn("cannot load prompt actions", "prompt", name, "path", path, "err", err)
			continue
		}

		logger.Debug("loaded prompt actions", "prompt", name, "path", path, "count", len(actions))
		prompts[name] = actions
	}

	return prompts, nil
}

func findManifest(promptDir string) (string, bool) {
	for _, candidate := range promptActionFiles {
		path := filepath.Join(promptDir, candidate)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

func parseJSON(data []byte) ([]models.ChatCompletionAction, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	// Keep schema numbers as written; float64 loses integers above 2^53.
	dec.UseNumber()

	var actions []models.ChatCompletionAction
	if trimmed[0] == '[' {
		if err := dec.Decode(&actions); err != nil {
			return nil, decodeError(err)
		}
	} else {
		var m manifest
		if err := dec.Decode(&m); err != nil {
			return nil, decodeError(err)
		}
		actions = m.Actions
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, models.NewError(models.ErrCodeDecode, "decode manifest: unexpected data after the first JSON value")
	}
	return actions, nil
}

func parseYAML(data []byte) ([]models.ChatCompletionAction, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, decodeError(err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var actions []models.ChatCompletionAction
	if root.Content[0].Kind == yaml.SequenceNode {
		if err := dec.Decode(&actions); err != nil && !errors.Is(err, io.EOF) {
			return nil, decodeError(err)
		}
	} else {
		var m manifest
		if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
			return nil, decodeError(err)
		}
		actions = m.Actions
	}

	var extra yaml.Node
	switch err := dec.Decode(&extra); {
	case err == nil:
		return nil, models.NewError(models.ErrCodeDecode, "decode manifest: a manifest holds a single YAML document")
	case !errors.Is(err, io.EOF):
		return nil, decodeError(err)
	}
	return actions, nil
}

func decodeError(err error) *models.ActionError {
	return models.NewErrorf(models.ErrCodeDecode, "decode manifest: %s", err.Error()).WithCause(err)
}
