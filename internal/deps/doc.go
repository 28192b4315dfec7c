// Package deps checks that the external executables dalo shells out to are
// installed: yt-dlp, which is required, and ffmpeg, which yt-dlp uses when
// present.
package deps
