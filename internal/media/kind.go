package media

import "strings"

// Kind identifies how a media element is rendered.
type Kind string

const (
	KindImage   Kind = "image"
	KindVideo   Kind = "video"
	KindUnknown Kind = "unknown"
)

// KindFromName classifies a listed item by file extension. Only the exact,
// case-sensitive suffixes ".mp4" and ".webm" are videos; everything else is an
// image. Gallery tiles and the viewer use this rule.
func KindFromName(name string) Kind {
	if strings.HasSuffix(name, ".mp4") || strings.HasSuffix(name, ".webm") {
		return KindVideo
	}
	return KindImage
}

// KindFromMIME classifies a locally selected file by its MIME type prefix.
// Uploader previews use this rule, not KindFromName; a file that is neither
// image/ nor video/ gets no preview.
func KindFromMIME(contentType string) Kind {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return KindImage
	case strings.HasPrefix(contentType, "video/"):
		return KindVideo
	default:
		return KindUnknown
	}
}
