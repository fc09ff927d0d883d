package uploads

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ContentKind buckets uploads for the preview policy.
type ContentKind int

const (
	KindOther ContentKind = iota
	KindImage
	KindAudio
	KindVideo
)

func (k ContentKind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindAudio:
		return "audio"
	case KindVideo:
		return "video"
	default:
		return "other"
	}
}

// DetectKind sniffs the content kind from the leading bytes.
func DetectKind(data []byte) ContentKind {
	mime := mimetype.Detect(data)
	switch {
	case strings.HasPrefix(mime.String(), "image/"):
		return KindImage
	case strings.HasPrefix(mime.String(), "audio/"):
		return KindAudio
	case strings.HasPrefix(mime.String(), "video/"):
		return KindVideo
	default:
		return KindOther
	}
}

// PreviewStrategy derives a teaser from uploaded content. Extract returns
// false when no preview should be produced.
type PreviewStrategy interface {
	Extract(data []byte) ([]byte, bool)
}

// NonePreview withholds a preview entirely. Used for still images, where a
// byte prefix is either a fully valid partial image or garbage, and for
// unknown formats.
type NonePreview struct{}

func (NonePreview) Extract(data []byte) ([]byte, bool) {
	return nil, false
}

// ByteTruncation yields the first min(10% of total, MaxBytes) bytes of the
// stream. For time-based media a truncated byte stream decodes as partial
// playback, so this produces a playable but non-restorable teaser. Not a
// transcode; a time-bounded transcode strategy can slot in behind the same
// interface later.
type ByteTruncation struct {
	MaxBytes int64
}

func (t ByteTruncation) Extract(data []byte) ([]byte, bool) {
	n := int64(len(data)) / 10
	if n > t.MaxBytes {
		n = t.MaxBytes
	}
	if n <= 0 {
		return nil, false
	}
	return data[:n], true
}

// StrategyFor is the preview policy table.
func StrategyFor(kind ContentKind, maxBytes int64) PreviewStrategy {
	switch kind {
	case KindAudio, KindVideo:
		return ByteTruncation{MaxBytes: maxBytes}
	default:
		return NonePreview{}
	}
}
