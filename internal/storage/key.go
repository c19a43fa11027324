// Package storage holds helpers shared by the object storage adapters.
package storage

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

const maxNameLength = 120

// SanitizeFilename reduces name to a safe object-key segment.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		name = ""
	}
	name = unsafeName.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "file"
	}
	if len(name) > maxNameLength {
		ext := path.Ext(name)
		if len(ext) >= maxNameLength {
			ext = ""
		}
		name = name[:maxNameLength-len(ext)] + ext
	}
	return name
}

// ObjectKey returns "{category}/{fieldKey}/{unixMillis}_{sanitizedName}".
func ObjectKey(category, fieldKey, originalName string, at time.Time) string {
	return fmt.Sprintf("%s/%s/%d_%s",
		segment(category, "uploads"),
		segment(fieldKey, "file"),
		at.UnixMilli(),
		SanitizeFilename(originalName),
	)
}

func segment(s, fallback string) string {
	s = strings.Trim(unsafeName.ReplaceAllString(strings.TrimSpace(s), "-"), "-")
	if s == "" {
		return fallback
	}
	return s
}

// PublicURL joins base and key. An empty base yields "".
func PublicURL(base, key string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return ""
	}
	return base + "/" + strings.TrimLeft(key, "/")
}
