// Package preflight provides readiness checks for the executables and
// filesystem paths dalo depends on.
//
// The download command runs CheckSystemDeps before its first probe so a
// missing yt-dlp fails fast with a clear message. "dalo status" uses RunAll,
// CheckSystemDeps, and ProbeYTDLPVersion to display overall health.
package preflight
