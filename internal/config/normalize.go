package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeYTDLP(); err != nil {
		return err
	}
	c.normalizeDownload()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeYTDLP() error {
	if value, ok := os.LookupEnv("DALO_YTDLP_BINARY"); ok && strings.TrimSpace(value) != "" {
		c.YTDLP.Binary = value
	}
	c.YTDLP.Binary = strings.TrimSpace(c.YTDLP.Binary)
	if c.YTDLP.Binary == "" {
		c.YTDLP.Binary = defaultYTDLPBinary
	}
	c.YTDLP.FFmpegBinary = strings.TrimSpace(c.YTDLP.FFmpegBinary)
	if c.YTDLP.FFmpegBinary == "" {
		c.YTDLP.FFmpegBinary = defaultFFmpegBinary
	}
	c.YTDLP.CookiesFile = strings.TrimSpace(c.YTDLP.CookiesFile)
	if c.YTDLP.CookiesFile != "" {
		expanded, err := expandPath(c.YTDLP.CookiesFile)
		if err != nil {
			return fmt.Errorf("ytdlp.cookies_file: %w", err)
		}
		c.YTDLP.CookiesFile = expanded
	}
	args := c.YTDLP.ExtraArgs[:0]
	for _, arg := range c.YTDLP.ExtraArgs {
		if arg = strings.TrimSpace(arg); arg != "" {
			args = append(args, arg)
		}
	}
	c.YTDLP.ExtraArgs = args
	return nil
}

func (c *Config) normalizeDownload() {
	c.Download.Mode = strings.ToLower(strings.TrimSpace(c.Download.Mode))
	if c.Download.Mode == "" {
		c.Download.Mode = ModeVideo
	}
	c.Download.AudioQuality = strings.ToLower(strings.TrimSpace(c.Download.AudioQuality))
	if c.Download.AudioQuality == "" {
		c.Download.AudioQuality = defaultAudioQuality
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
