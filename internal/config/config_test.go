package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, FormatTOON, cfg.Format)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, DefaultMaxFileSize, cfg.MaxFileSize)
	assert.Contains(t, cfg.Extensions, ".h")
	assert.Contains(t, cfg.Extensions, ".cpp")
	assert.Equal(t, "qmlRegisterType", cfg.Options.RegisterFunction)
	assert.Equal(t, []string{"Q_ASSERT", "assert", "qt_assert"}, cfg.Options.AssertFunctions)
	assert.Equal(t, []string{"QLatin1String", "QString"}, cfg.Options.StringFunctions)
}

func TestLoadFromRoot(t *testing.T) {
	root := t.TempDir()
	content := `
format: JSON
log_level: debug
max_file_size: 2048
extensions: [.h, .cpp]
register_function: qmlRegisterUncreatableType
assert_functions: [MY_ASSERT]
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "qmlscan.yaml"), []byte(content), 0o644))

	cfg, err := Load("", root)
	require.NoError(t, err)

	assert.Equal(t, FormatJSON, cfg.Format)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2048, cfg.MaxFileSize)
	assert.Equal(t, []string{".h", ".cpp"}, cfg.Extensions)
	assert.Equal(t, "qmlRegisterUncreatableType", cfg.Options.RegisterFunction)
	assert.Equal(t, []string{"MY_ASSERT"}, cfg.Options.AssertFunctions)
	assert.Equal(t, []string{"QLatin1String", "QString"}, cfg.Options.StringFunctions)
}

func TestLoadExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: yaml\n"), 0o644))

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, cfg.Format)

	_, err = Load(filepath.Join(dir, "missing.yaml"), "")
	assert.Error(t, err)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("QMLSCAN_FORMAT", "yaml")
	t.Setenv("QMLSCAN_MAX_FILE_SIZE", "10")

	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, cfg.Format)
	assert.Equal(t, 10, cfg.MaxFileSize)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Format: "toon", MaxFileSize: 1}, false},
		{"upper case format", Config{Format: " YAML ", MaxFileSize: 1}, false},
		{"unknown format", Config{Format: "xml", MaxFileSize: 1}, true},
		{"zero size", Config{Format: "json"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Options.RegisterFunction = "qmlRegisterType"
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	empty := Config{Format: "json", MaxFileSize: 1}
	assert.Error(t, empty.Validate(), "empty register_function")
}
