package config

import (
	"errors"
	"fmt"
	"slices"
)

var (
	validAudioQualities = []string{"low", "mid", "high"}
	validModes          = []string{ModeVideo, ModeAudio}
	validLogFormats     = []string{"console", "json"}
	validLogLevels      = []string{"debug", "info", "warn", "error"}
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.WorkDir == "" {
		return errors.New("paths.work_dir must be set")
	}
	if c.History.Enabled && c.Paths.HistoryDB == "" {
		return errors.New("paths.history_db must be set when history.enabled is true")
	}
	return nil
}

func (c *Config) validateDownload() error {
	if !slices.Contains(validModes, c.Download.Mode) {
		return fmt.Errorf("download.mode must be one of %v, got %q", validModes, c.Download.Mode)
	}
	if !slices.Contains(validAudioQualities, c.Download.AudioQuality) {
		return fmt.Errorf("download.audio_quality must be one of %v, got %q", validAudioQualities, c.Download.AudioQuality)
	}
	if c.Download.VideoHeight <= 0 {
		return errors.New("download.video_height must be positive")
	}
	if c.Download.VideoFPS <= 0 {
		return errors.New("download.video_fps must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !slices.Contains(validLogFormats, c.Logging.Format) {
		return fmt.Errorf("logging.format must be one of %v, got %q", validLogFormats, c.Logging.Format)
	}
	if !slices.Contains(validLogLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of %v, got %q", validLogLevels, c.Logging.Level)
	}
	return nil
}
