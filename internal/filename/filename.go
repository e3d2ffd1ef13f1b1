package filename

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Filenames produced by the ingest path follow
// <coilNumber>_<epochMillis>_<type>.<ext>. The inspection line also drops
// legacy crops named <YYYYMMDDHHMMSS>_<coilNumber>_crop_<n>.jpg.

var (
	epochMillisPattern = regexp.MustCompile(`(\d{13,})`)
	legacyDatePattern  = regexp.MustCompile(`^(\d{14})_`)
	imageExtPattern    = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|bmp)$`)
)

// Parse extracts the capture timestamp (epoch milliseconds) and coil number
// from an image filename. Unparseable timestamps fall back to the current
// wall-clock time so newly observed files still sort plausibly; an absent
// coil field yields "unknown".
func Parse(name string) (int64, string) {
	return ParseTimestamp(name), ParseCoilNumber(name)
}

// ParseTimestamp derives the capture time from the filename. Legacy crop
// names lead with exactly 14 date digits and an underscore; that check runs
// first because the date block would otherwise be mistaken for a 13+ digit
// epoch-millis run. Anything else resolves to "now".
func ParseTimestamp(name string) int64 {
	if m := legacyDatePattern.FindSubmatch([]byte(name)); m != nil {
		if t, err := time.ParseInLocation("20060102150405", string(m[1]), time.Local); err == nil {
			return t.UnixMilli()
		}
	}

	if m := epochMillisPattern.FindString(name); m != "" {
		if ts, err := strconv.ParseInt(m, 10, 64); err == nil {
			return ts
		}
	}

	return time.Now().UnixMilli()
}

// ParseCoilNumber extracts the coil number. In the canonical pair-upload
// scheme the coil leads and the second field is the timestamp; in the legacy
// crop scheme the date leads and the second field is the coil.
func ParseCoilNumber(name string) string {
	parts := strings.Split(name, "_")
	if len(parts) < 2 {
		return "unknown"
	}
	if len(parts[1]) >= 13 && isDigits(parts[1]) {
		return parts[0]
	}
	return parts[1]
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Format builds the canonical pair-upload filename. ext must include the
// leading dot.
func Format(coilNumber string, timestamp int64, imageType, ext string) string {
	return fmt.Sprintf("%s_%d_%s%s", coilNumber, timestamp, imageType, ext)
}

// IsImageFile reports whether name looks like an image the watcher should
// care about. Dotfiles and non-image extensions are ignored.
func IsImageFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return imageExtPattern.MatchString(base)
}
