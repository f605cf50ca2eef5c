package mediatypes

import (
	"path/filepath"
	"strings"
)

// ImageExtensions is the set of photo extensions the scanner indexes.
// Keys are lower case with the leading dot.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
	".heic": true,
	".heif": true,
}

// MimeTypes maps image extensions to the MIME type sent to the generator.
var MimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".heic": "image/heic",
	".heif": "image/heif",
}

// needsVips lists formats the pure-Go decoders cannot open.
var needsVips = map[string]bool{
	".heic": true,
	".heif": true,
}

// Ext returns the lower-cased extension of name, including the dot.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// IsImage reports whether name has a supported photo extension.
func IsImage(name string) bool {
	return ImageExtensions[Ext(name)]
}

// GetMimeType returns the MIME type for a file name or extension.
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(name string) string {
	ext := name
	if !strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		ext = Ext(name)
	}
	if mime, ok := MimeTypes[strings.ToLower(ext)]; ok {
		return mime
	}
	return "application/octet-stream"
}

// NeedsVips reports whether decoding name requires libvips.
func NeedsVips(name string) bool {
	return needsVips[Ext(name)]
}
