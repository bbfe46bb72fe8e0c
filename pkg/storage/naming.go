package storage

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// UploadName derives a unique key of the form <base>-<unix millis>-<random><ext>
// from the client supplied filename.
func UploadName(original string, now time.Time) string {
	name := filepath.Base(filepath.ToSlash(original))
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	base = strings.Trim(unsafeNameChars.ReplaceAllString(base, "_"), "_.")
	if base == "" {
		base = "file"
	}
	ext = unsafeNameChars.ReplaceAllString(ext, "")
	if ext == "." {
		ext = ""
	}

	return fmt.Sprintf("%s-%d-%d%s", base, now.UnixMilli(), rand.Intn(1_000_000_000), ext)
}
