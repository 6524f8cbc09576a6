package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	s := Defaults()
	assert.Equal(t, 0.01, s.LearningRate)
	assert.Equal(t, int64(20), s.BatchSize)
	assert.Equal(t, 100, s.Epochs)
	assert.Equal(t, "pt", s.ModelExtension)
	assert.NoError(t, s.Validate())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeSettings(t, `{"epochs": 5, "model_extension": ".ot", "backend_url": "ws://localhost:9000/build"}`)

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, s.Epochs)
	assert.Equal(t, "ot", s.ModelExtension)
	assert.Equal(t, "ws://localhost:9000/build", s.BackendURL)
	assert.Equal(t, 0.01, s.LearningRate)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"bad json":    `{"epochs": }`,
		"negative lr": `{"learning_rate": -1}`,
		"zero batch":  `{"batch_size": 0}`,
		"empty ext":   `{"model_extension": "."}`,
		"zero epochs": `{"epochs": 0}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeSettings(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
	assert.Equal(t, Defaults(), s)
}
