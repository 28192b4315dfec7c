package config

const (
	defaultConfigPath   = "~/.config/dalo/config.toml"
	projectConfigName   = "dalo.toml"
	logFileName         = "dalo.log"
	defaultWorkDir      = "~/.local/share/dalo/work"
	defaultLogDir       = "~/.local/share/dalo/logs"
	defaultHistoryDB    = "~/.local/share/dalo/history.db"
	defaultYTDLPBinary  = "yt-dlp"
	defaultFFmpegBinary = "ffmpeg"
	defaultAudioQuality = "high"
	defaultVideoHeight  = 1080
	defaultVideoFPS     = 60
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// Download modes accepted in [download].mode.
const (
	ModeVideo = "video"
	ModeAudio = "audio"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		YTDLP: YTDLP{
			Binary:       defaultYTDLPBinary,
			FFmpegBinary: defaultFFmpegBinary,
		},
		Download: Download{
			Mode:         ModeVideo,
			AudioQuality: defaultAudioQuality,
			VideoHeight:  defaultVideoHeight,
			VideoFPS:     defaultVideoFPS,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
