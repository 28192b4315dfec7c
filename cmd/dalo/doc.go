// Command dalo downloads media through yt-dlp using a two-tier height and
// frame-rate selection policy.
//
// "dalo download" prints a status block (OK_SINGLE, OK_SPLIT, OK_AUDIO, or
// ERR) on stdout and logs to stderr. "dalo formats" shows what the policy
// would pick without downloading, "dalo history" lists recorded runs, and
// "dalo status" checks yt-dlp, ffmpeg, and the configured directories.
package main
