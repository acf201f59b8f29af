// Package config loads tracker settings from a JSON file and BALLTRACK_* environment variables.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/LdDl/ball-tracker/track"
	"github.com/pkg/errors"
)

// EnvPrefix is the prefix of environment variables which override file values
const EnvPrefix = "BALLTRACK_"

const maxFileSize = 1 * 1024 * 1024

// Config is the root configuration document. Keys omitted from JSON keep default values.
type Config struct {
	// HSV bounds in OpenCV scale: H in [0, 180], S and V in [0, 255]
	ColorLower [3]float64 `json:"color_lower"`
	ColorUpper [3]float64 `json:"color_upper"`

	MinRadius         float64 `json:"min_radius"`
	MorphIterations   int     `json:"morph_iterations"`
	BlurKernel        int     `json:"blur_kernel"`
	ProcessNoise      float64 `json:"process_noise"`
	MeasurementNoise  float64 `json:"measurement_noise"`
	InitialCovariance float64 `json:"initial_covariance"`
	AccelerationNoise float64 `json:"acceleration_noise"`
	MotionModel       string  `json:"motion_model"`
	// "bgr" for video sources, "rgb" for frames coming from image libraries
	ChannelOrder string `json:"channel_order"`

	// Zero keeps source size. Otherwise frames are fitted into the box preserving aspect ratio
	FrameWidth  int `json:"frame_width"`
	FrameHeight int `json:"frame_height"`
	// Zero means as fast as possible
	FPS  float64 `json:"fps"`
	Loop bool    `json:"loop"`

	MetricsAddr string `json:"metrics_addr"`
	LogLevel    string `json:"log_level"`
}

// Default returns configuration for a tennis ball
func Default() Config {
	tracker := track.DefaultConfig()
	return Config{
		ColorLower:        [3]float64{tracker.Range.Lower.H, tracker.Range.Lower.S, tracker.Range.Lower.V},
		ColorUpper:        [3]float64{tracker.Range.Upper.H, tracker.Range.Upper.S, tracker.Range.Upper.V},
		MinRadius:         tracker.MinRadius,
		MorphIterations:   tracker.MorphIterations,
		BlurKernel:        tracker.BlurKernel,
		ProcessNoise:      tracker.ProcessNoise,
		MeasurementNoise:  tracker.MeasurementNoise,
		InitialCovariance: tracker.InitialCovariance,
		AccelerationNoise: tracker.AccelerationNoise,
		MotionModel:       string(tracker.Model),
		ChannelOrder:      tracker.Order.String(),
		LogLevel:          "info",
	}
}

// Load reads configuration file and applies environment overrides. Empty path means defaults plus environment.
// The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func (cfg *Config) readFile(path string) error {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return errors.Errorf("config file must have .json extension, got %q", ext)
	}
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return errors.Wrap(err, "Can't stat config file")
	}
	if fileInfo.Size() > maxFileSize {
		return errors.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return errors.Wrap(err, "Can't read config file")
	}
	// Unmarshal over defaults: keys missing in file stay untouched
	if err := json.Unmarshal(data, cfg); err != nil {
		return errors.Wrap(err, "Can't parse config JSON")
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func (cfg *Config) applyEnv(lookup lookupFunc) error {
	floats := map[string]*float64{
		"MIN_RADIUS":         &cfg.MinRadius,
		"PROCESS_NOISE":      &cfg.ProcessNoise,
		"MEASUREMENT_NOISE":  &cfg.MeasurementNoise,
		"INITIAL_COVARIANCE": &cfg.InitialCovariance,
		"ACCELERATION_NOISE": &cfg.AccelerationNoise,
		"FPS":                &cfg.FPS,
	}
	ints := map[string]*int{
		"MORPH_ITERATIONS": &cfg.MorphIterations,
		"BLUR_KERNEL":      &cfg.BlurKernel,
		"FRAME_WIDTH":      &cfg.FrameWidth,
		"FRAME_HEIGHT":     &cfg.FrameHeight,
	}
	strs := map[string]*string{
		"MOTION_MODEL":  &cfg.MotionModel,
		"CHANNEL_ORDER": &cfg.ChannelOrder,
		"METRICS_ADDR":  &cfg.MetricsAddr,
		"LOG_LEVEL":     &cfg.LogLevel,
	}
	for name, field := range floats {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return errors.Wrapf(err, "Can't parse %s%s", EnvPrefix, name)
			}
			*field = f
		}
	}
	for name, field := range ints {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.Wrapf(err, "Can't parse %s%s", EnvPrefix, name)
			}
			*field = n
		}
	}
	for name, field := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*field = v
		}
	}
	if v, ok := lookup(EnvPrefix + "LOOP"); ok && v != "" {
		loop, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "Can't parse %sLOOP", EnvPrefix)
		}
		cfg.Loop = loop
	}
	for name, field := range map[string]*[3]float64{"COLOR_LOWER": &cfg.ColorLower, "COLOR_UPPER": &cfg.ColorUpper} {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			triple, err := parseTriple(v)
			if err != nil {
				return errors.Wrapf(err, "Can't parse %s%s", EnvPrefix, name)
			}
			*field = triple
		}
	}
	return nil
}

// parseTriple parses "h,s,v"
func parseTriple(v string) ([3]float64, error) {
	parts := strings.Split(v, ",")
	if len(parts) != 3 {
		return [3]float64{}, errors.Errorf("expected 3 comma separated values, got %d", len(parts))
	}
	var triple [3]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return [3]float64{}, err
		}
		triple[i] = f
	}
	return triple, nil
}

// Validate checks values which don't depend on the tracker package and then the tracker configuration itself
func (cfg Config) Validate() error {
	if cfg.FrameWidth < 0 || cfg.FrameHeight < 0 {
		return errors.Wrapf(track.ErrInvalidConfig, "frame size %dx%d is negative", cfg.FrameWidth, cfg.FrameHeight)
	}
	if cfg.FPS < 0 {
		return errors.Wrapf(track.ErrInvalidConfig, "fps %v is negative", cfg.FPS)
	}
	trackerCfg, err := cfg.TrackerConfig()
	if err != nil {
		return err
	}
	return trackerCfg.Validate()
}

// TrackerConfig converts document into configuration of tracking pipeline
func (cfg Config) TrackerConfig() (track.Config, error) {
	var order track.ChannelOrder
	switch strings.ToLower(cfg.ChannelOrder) {
	case "", "bgr":
		order = track.BGR
	case "rgb":
		order = track.RGB
	default:
		return track.Config{}, errors.Wrapf(track.ErrInvalidConfig, "channel order %q", cfg.ChannelOrder)
	}
	return track.Config{
		Range: track.ColorRange{
			Lower: track.HSV{H: cfg.ColorLower[0], S: cfg.ColorLower[1], V: cfg.ColorLower[2]},
			Upper: track.HSV{H: cfg.ColorUpper[0], S: cfg.ColorUpper[1], V: cfg.ColorUpper[2]},
		},
		Order:             order,
		MinRadius:         cfg.MinRadius,
		MorphIterations:   cfg.MorphIterations,
		BlurKernel:        cfg.BlurKernel,
		Model:             track.MotionModel(cfg.MotionModel),
		ProcessNoise:      cfg.ProcessNoise,
		MeasurementNoise:  cfg.MeasurementNoise,
		InitialCovariance: cfg.InitialCovariance,
		AccelerationNoise: cfg.AccelerationNoise,
	}, nil
}
