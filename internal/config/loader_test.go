package config

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockFileSystem implements FileSystem for testing.
type MockFileSystem struct {
	HomeDir     string
	HomeDirErr  error
	Files       map[string][]byte
	ReadFileErr error
}

func (m *MockFileSystem) UserHomeDir() (string, error) {
	return m.HomeDir, m.HomeDirErr
}

func (m *MockFileSystem) ReadFile(path string) ([]byte, error) {
	if m.ReadFileErr != nil {
		return nil, m.ReadFileErr
	}
	data, ok := m.Files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

const jsonPath = "/home/user/.config/fraudinv/config.json"
const tomlPath = "/home/user/.config/fraudinv/config.toml"

// --- HAPPY PATH TESTS ---

func TestLoad_NoConfigFile_ReturnsDefaults(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files:   map[string][]byte{},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Investigation.MaxTurns)
	assert.Equal(t, "gemini", cfg.Provider.Name)
	assert.Equal(t, "gemini-2.5-pro", cfg.Provider.Model)
	assert.Equal(t, 0.85, cfg.Investigation.Thresholds.Escalate)
}

func TestLoad_FullOverride_AllValuesReplaced(t *testing.T) {
	configJSON := `{
		"provider": {"name": "anthropic", "model": "claude-sonnet-4-5", "timeout_seconds": 30},
		"investigation": {"max_turns": 15, "thresholds": {"escalate": 0.9, "verify": 0.7, "monitor": 0.5, "dismiss": 0.1}},
		"data": {"database_path": "/srv/fraud.db", "output_dir": "/srv/out", "embedding": {"provider": "ollama", "dimension": 768}},
		"runner": {"workers": 4, "watch_schedule": "*/30 * * * * *", "inbox_dir": "/srv/inbox"},
		"logging": {"level": "debug", "format": "json"}
	}`
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files:   map[string][]byte{jsonPath: []byte(configJSON)},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Provider.Name)
	assert.Equal(t, 30, cfg.Provider.TimeoutSeconds)
	assert.Equal(t, 15, cfg.Investigation.MaxTurns)
	assert.Equal(t, 0.7, cfg.Investigation.Thresholds.Verify)
	assert.Equal(t, "/srv/fraud.db", cfg.Data.DatabasePath)
	assert.Equal(t, 768, cfg.Data.Embedding.Dimension)
	assert.Equal(t, 4, cfg.Runner.Workers)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_PartialOverride_MergesWithDefaults(t *testing.T) {
	configJSON := `{"investigation": {"max_turns": 20}}`
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files:   map[string][]byte{jsonPath: []byte(configJSON)},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Investigation.MaxTurns)               // Overridden
	assert.Equal(t, 0.60, cfg.Investigation.Thresholds.Verify)    // Default
	assert.Equal(t, "outputs/investigations", cfg.Data.OutputDir) // Default
}

func TestLoad_TOMLFile_UsedWhenNoJSON(t *testing.T) {
	configTOML := `
[provider]
name = "openai"
model = "gpt-4o"

[runner]
workers = 3
`
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files:   map[string][]byte{tomlPath: []byte(configTOML)},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Provider.Name)
	assert.Equal(t, "gpt-4o", cfg.Provider.Model)
	assert.Equal(t, 3, cfg.Runner.Workers)
	assert.Equal(t, 10, cfg.Investigation.MaxTurns)
}

func TestLoad_JSONPreferredOverTOML(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			jsonPath: []byte(`{"runner": {"workers": 2}}`),
			tomlPath: []byte("[runner]\nworkers = 8\n"),
		},
	}

	cfg, err := NewLoaderWithFS(fs).Load()

	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Runner.Workers)
}

func TestLoadFile_ExplicitPath(t *testing.T) {
	fs := &MockFileSystem{
		Files: map[string][]byte{"/etc/fraudinv.json": []byte(`{"provider": {"timeout_seconds": 5}}`)},
	}

	cfg, err := NewLoaderWithFS(fs).LoadFile("/etc/fraudinv.json")

	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Provider.TimeoutSeconds)
}

// --- UNHAPPY PATH TESTS ---

func TestLoad_MalformedJSON_ReturnsError(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files:   map[string][]byte{jsonPath: []byte(`{invalid json`)},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid")
}

func TestLoad_MalformedTOML_ReturnsError(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files:   map[string][]byte{tomlPath: []byte("[provider\nname = ")},
	}

	cfg, err := NewLoaderWithFS(fs).Load()

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PermissionDenied_ReturnsError(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir:     "/home/user",
		ReadFileErr: os.ErrPermission,
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.True(t, errors.Is(err, os.ErrPermission))
}

func TestLoad_HomeDirError_ReturnsDefaults(t *testing.T) {
	fs := &MockFileSystem{
		HomeDirErr: errors.New("homeless"),
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Investigation.MaxTurns)
}

func TestLoadFile_Missing_WrapsNotExist(t *testing.T) {
	fs := &MockFileSystem{Files: map[string][]byte{}}

	_, err := NewLoaderWithFS(fs).LoadFile("/nope.json")

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_WrongJSONType_ReturnsError(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files:   map[string][]byte{jsonPath: []byte(`["not", "an", "object"]`)},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

// --- EDGE CASE TESTS ---

func TestLoad_ExplicitZero_OverridesAndFailsValidation(t *testing.T) {
	configJSON := `{"investigation": {"max_turns": 0}}`
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files:   map[string][]byte{jsonPath: []byte(configJSON)},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "max_turns")
}

func TestLoad_UnknownFields_Ignored(t *testing.T) {
	configJSON := `{"investigation": {"max_turns": 12}, "unknown_field": "ignored"}`
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files:   map[string][]byte{jsonPath: []byte(configJSON)},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Investigation.MaxTurns)
}

// --- DEFAULT CONFIG TESTS ---

func TestDefaultConfig_AllFieldsInitialized(t *testing.T) {
	cfg := DefaultConfig()

	assert.Greater(t, cfg.Investigation.MaxTurns, 0)
	assert.Greater(t, cfg.Provider.TimeoutSeconds, 0)
	assert.Equal(t, 1, cfg.Runner.Workers)
	assert.NotEmpty(t, cfg.Data.DatabasePath)
	assert.Equal(t, "hash", cfg.Data.Embedding.Provider)
}
