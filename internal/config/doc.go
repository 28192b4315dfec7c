// Package config loads, normalizes, and validates dalo configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the DALO_YTDLP_BINARY environment
// override. The Config type centralizes the working directory, the yt-dlp
// invocation settings, and the default selection targets so the CLI can
// discover them in one pass.
package config
