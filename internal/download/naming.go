package download

import (
	"fmt"
	"path/filepath"
)

// Kind tags embedded in output file names.
const (
	tagMusic  = "music"
	tagSingle = "single"
	tagVideo  = "video"
	tagAudio  = "audio"
	tagBest   = "best"
)

// OutputTemplate builds the delegate output template for one fetch. The
// title, item id, targets, and kind tag keep names from colliding across runs
// with different targets.
func OutputTemplate(workDir, tag string, height, fps int) string {
	return filepath.Join(workDir, fmt.Sprintf("%%(title).80s__%%(id)s__H%d_F%d_%s.%%(ext)s", height, fps, tag))
}
