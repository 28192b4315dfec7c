package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeYTDLPScript mimics the parts of yt-dlp the client relies on: "-J"
// prints the probe payload, "--version" prints a version, and anything else is
// treated as a download of the "-o" template with title Clip and id abc.
const fakeYTDLPScript = `#!/bin/sh
case "$1" in
  -J)
    cat "__PROBE__"
    ;;
  --version)
    echo 2026.01.01
    ;;
  *)
    out=""
    sel=""
    prev=""
    for a in "$@"; do
      [ "$prev" = "-o" ] && out="$a"
      [ "$prev" = "-f" ] && sel="$a"
      prev="$a"
    done
    ext=mp4
    case "$sel" in
      bestaudio*) ext=m4a ;;
    esac
    path=$(printf '%s' "$out" | sed -e 's/%(title)\.80s/Clip/' -e 's/%(id)s/abc/' -e "s/%(ext)s/$ext/")
    echo "dalo:progress downloading 0 1000 NA"
    echo "dalo:progress downloading 500 1000 NA"
    printf 'media' > "$path"
    echo "dalo:progress downloading 1000 1000 NA"
    echo "dalo:file $path"
    echo "dalo:title Clip"
    echo "dalo:id abc"
    ;;
esac
`

// WriteFakeYTDLP writes the scripted yt-dlp into dir and returns its path.
func WriteFakeYTDLP(t testing.TB, dir, probeJSON string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	probePath := filepath.Join(dir, "probe.json")
	if err := os.WriteFile(probePath, []byte(probeJSON), 0o644); err != nil {
		t.Fatalf("write probe payload: %v", err)
	}
	script := strings.ReplaceAll(fakeYTDLPScript, "__PROBE__", probePath)
	binary := filepath.Join(dir, "yt-dlp")
	if err := os.WriteFile(binary, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake yt-dlp: %v", err)
	}
	return binary
}

// WriteLines writes lines to path, newline terminated, creating parent
// directories as needed.
func WriteLines(t testing.TB, path string, lines ...string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
