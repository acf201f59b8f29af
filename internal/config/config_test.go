package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LdDl/ball-tracker/track"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultMatchesTracker(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	trackerCfg, err := cfg.TrackerConfig()
	require.NoError(t, err)
	assert.Equal(t, track.DefaultConfig(), trackerCfg)
}

func TestLoadPartialFile(t *testing.T) {
	path := writeConfig(t, "tracker.json", `{"min_radius": 15, "motion_model": "acceleration", "loop": true}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 15.0, cfg.MinRadius)
	assert.Equal(t, "acceleration", cfg.MotionModel)
	assert.True(t, cfg.Loop)
	// Untouched keys keep defaults
	assert.Equal(t, 11, cfg.BlurKernel)
	assert.Equal(t, [3]float64{29, 86, 6}, cfg.ColorLower)
}

func TestLoadRejectsBadFiles(t *testing.T) {
	_, err := Load(writeConfig(t, "tracker.yaml", `min_radius: 3`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "broken.json", `{"min_radius": `))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "even.json", `{"blur_kernel": 10}`))
	assert.True(t, errors.Is(err, track.ErrInvalidConfig))

	_, err = Load(writeConfig(t, "range.json", `{"color_lower": [70, 0, 0], "color_upper": [60, 255, 255]}`))
	assert.True(t, errors.Is(err, track.ErrInvalidColorRange))

	_, err = Load(writeConfig(t, "model.json", `{"motion_model": "particle"}`))
	assert.True(t, errors.Is(err, track.ErrUnknownMotionModel))
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"BALLTRACK_MIN_RADIUS":    "4.5",
		"BALLTRACK_BLUR_KERNEL":   "7",
		"BALLTRACK_MOTION_MODEL":  "acceleration",
		"BALLTRACK_LOOP":          "true",
		"BALLTRACK_COLOR_UPPER":   "70, 200, 200",
		"BALLTRACK_METRICS_ADDR":  ":9100",
		"BALLTRACK_CHANNEL_ORDER": "rgb",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	cfg := Default()
	require.NoError(t, cfg.applyEnv(lookup))
	assert.Equal(t, 4.5, cfg.MinRadius)
	assert.Equal(t, 7, cfg.BlurKernel)
	assert.Equal(t, "acceleration", cfg.MotionModel)
	assert.True(t, cfg.Loop)
	assert.Equal(t, [3]float64{70, 200, 200}, cfg.ColorUpper)
	assert.Equal(t, ":9100", cfg.MetricsAddr)

	trackerCfg, err := cfg.TrackerConfig()
	require.NoError(t, err)
	assert.Equal(t, track.RGB, trackerCfg.Order)

	env["BALLTRACK_FPS"] = "fast"
	assert.Error(t, cfg.applyEnv(lookup))
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "tracker.json", `{"min_radius": 15}`)
	t.Setenv("BALLTRACK_MIN_RADIUS", "20")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20.0, cfg.MinRadius)
}

func TestTrackerConfigUnknownOrder(t *testing.T) {
	cfg := Default()
	cfg.ChannelOrder = "yuv"
	_, err := cfg.TrackerConfig()
	assert.True(t, errors.Is(err, track.ErrInvalidConfig))
}
