// Package settings loads the application preferences file.
package settings

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Defaults seeded into a new training configuration.
const (
	DefaultLearningRate   = 0.01
	DefaultBatchSize      = 20
	DefaultEpochs         = 100
	DefaultModelExtension = "pt"
)

// Settings holds the user preferences.
type Settings struct {
	// LearningRate, BatchSize and Epochs seed the training panel.
	LearningRate float64 `json:"learning_rate"`
	BatchSize    int64   `json:"batch_size"`
	Epochs       int     `json:"epochs"`

	// ModelExtension is appended to every model save path, without the dot.
	ModelExtension string `json:"model_extension"`

	// BackendURL is the websocket endpoint of the training backend. When
	// empty, build requests are written next to the model save path.
	BackendURL string `json:"backend_url,omitempty"`

	// BuildLog is an optional CSV file that records every build request.
	BuildLog string `json:"build_log,omitempty"`
}

// Defaults returns the built-in preferences.
func Defaults() Settings {
	return Settings{
		LearningRate:   DefaultLearningRate,
		BatchSize:      DefaultBatchSize,
		Epochs:         DefaultEpochs,
		ModelExtension: DefaultModelExtension,
	}
}

// Load reads a JSON preferences file on top of Defaults. Fields absent from
// the file keep their default value.
func Load(path string) (Settings, error) {
	s := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return s, errors.Wrap(err, "failed to read settings")
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, errors.Wrapf(err, "failed to parse settings %s", path)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Validate checks that the seeded training values are usable.
func (s *Settings) Validate() error {
	if s.LearningRate <= 0 {
		return errors.Errorf("settings: learning_rate must be positive, got %v", s.LearningRate)
	}
	if s.BatchSize <= 0 {
		return errors.Errorf("settings: batch_size must be positive, got %d", s.BatchSize)
	}
	if s.Epochs <= 0 {
		return errors.Errorf("settings: epochs must be positive, got %d", s.Epochs)
	}
	s.ModelExtension = strings.TrimPrefix(strings.TrimSpace(s.ModelExtension), ".")
	if s.ModelExtension == "" {
		return errors.New("settings: model_extension must not be empty")
	}
	return nil
}
