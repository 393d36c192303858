package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ObjectKey builds a bucket key of the form prefix/YYYYmmddHHMMSS_<id>_<filename>.
// The random id keeps two uploads of the same file within one second apart.
func ObjectKey(prefix, filename string, now time.Time) string {
	return fmt.Sprintf("%s/%s_%s", prefix, now.Format("20060102150405"), uniqueName(filename))
}

// uniqueName returns <id>_<basename> for a client supplied file name
func uniqueName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	if name == "." || name == "/" {
		name = "image.jpg"
	}
	id := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return id + "_" + name
}
