package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zsiec/ringvideo/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *config.LoggingConfig
		wantErr bool
		check   func(t *testing.T, logger *logrus.Logger)
	}{
		{
			name: "json format stdout",
			config: &config.LoggingConfig{
				Level:  "info",
				Format: "json",
				Output: "stdout",
			},
			check: func(t *testing.T, logger *logrus.Logger) {
				assert.Equal(t, logrus.InfoLevel, logger.Level)
				_, ok := logger.Formatter.(*logrus.JSONFormatter)
				assert.True(t, ok)
			},
		},
		{
			name: "text format stderr",
			config: &config.LoggingConfig{
				Level:  "debug",
				Format: "text",
				Output: "stderr",
			},
			check: func(t *testing.T, logger *logrus.Logger) {
				assert.Equal(t, logrus.DebugLevel, logger.Level)
				_, ok := logger.Formatter.(*logrus.TextFormatter)
				assert.True(t, ok)
			},
		},
		{
			name: "file output",
			config: &config.LoggingConfig{
				Level:      "warn",
				Format:     "json",
				Output:     filepath.Join(t.TempDir(), "logs", "ringvideo.log"),
				MaxSize:    10,
				MaxBackups: 3,
				MaxAge:     7,
			},
			check: func(t *testing.T, logger *logrus.Logger) {
				assert.Equal(t, logrus.WarnLevel, logger.Level)
			},
		},
		{
			name: "invalid log level",
			config: &config.LoggingConfig{
				Level:  "loud",
				Format: "json",
				Output: "stdout",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, logger)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
			if tt.check != nil {
				tt.check(t, logger)
			}
		})
	}
}

func TestDefaultFields(t *testing.T) {
	logger, err := New(&config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"})
	require.NoError(t, err)

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.WithField("frame", 3).Info("Frame decoded")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ringvideo", entry["service"])
	assert.Contains(t, entry["version"], "ringvideo")
	assert.Equal(t, "Frame decoded", entry["message"])
	assert.Equal(t, float64(3), entry["frame"])
}

func TestFileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "ringvideo.log")

	logger, err := New(&config.LoggingConfig{
		Level:      "info",
		Format:     "text",
		Output:     logFile,
		MaxSize:    1,
		MaxBackups: 1,
		MaxAge:     1,
	})
	require.NoError(t, err)

	logger.Info("Test log message")

	_, err = os.Stat(logFile)
	assert.NoError(t, err)
}

func TestLoggerHelpers(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	entry := WithComponent(logger, "walker")
	assert.Equal(t, "walker", entry.Data["component"])

	entry = WithCapture(logger, "disc.bin", 1234)
	assert.Equal(t, "disc.bin", entry.Data["capture"])
	assert.Equal(t, int64(1234), entry.Data["size"])
}

func TestRunContext(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	ctx, entry := WithRun(context.Background(), logger)
	runID := GetRunID(ctx)

	assert.Len(t, runID, 36)
	assert.Equal(t, runID, entry.Data["run_id"])
	assert.Equal(t, entry, FromContext(ctx))

	assert.Empty(t, GetRunID(context.Background()))
	assert.NotNil(t, FromContext(context.Background()))
	assert.NotEqual(t, NewRunID(), NewRunID())
}

func TestLogrusAdapter(t *testing.T) {
	var buf bytes.Buffer
	logrusLogger := logrus.New()
	logrusLogger.SetOutput(&buf)
	logrusLogger.SetFormatter(&logrus.JSONFormatter{})
	logrusLogger.SetLevel(logrus.DebugLevel)

	adapter := NewLogrusAdapter(logrus.NewEntry(logrusLogger))
	adapter.WithFields(map[string]interface{}{"offset": 19600}).
		WithField("variant", "color").
		WithError(assert.AnError).
		Warnf("resynced after %d bytes", 37)

	output := buf.String()
	assert.Contains(t, output, `"offset":19600`)
	assert.Contains(t, output, `"variant":"color"`)
	assert.Contains(t, output, "resynced after 37 bytes")
	assert.Contains(t, output, `"level":"warning"`)
	assert.Contains(t, output, assert.AnError.Error())
}
