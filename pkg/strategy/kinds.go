package strategy

import (
	"fmt"

	"savbot/pkg/action"
	"savbot/pkg/message"
)

// kindSpec describes how one content kind behaves: which built-in actions its
// arrival menu offers, what fires when the owner ignores the message, and how
// its payload downloads.
type kindSpec struct {
	possible      []string
	defaultAction string
	downloadable  bool
	extension     string
}

// kindSpecs is the per-kind dispatch table. Every supported content kind has
// an entry; dispatch on an unknown kind falls back to the text row.
var kindSpecs = map[message.ContentKind]kindSpec{
	message.KindText: {
		possible:      []string{action.CodeDeleteRequest, action.CodeKeep},
		defaultAction: action.CodeDeleteNow,
	},
	message.KindPhoto: {
		possible:      []string{action.CodeDeleteRequest, action.CodeKeep, action.CodeDownload},
		defaultAction: action.CodeDownload,
		downloadable:  true,
		extension:     "jpg",
	},
	message.KindVideo: {
		possible:      []string{action.CodeDeleteRequest, action.CodeKeep, action.CodeDownload},
		defaultAction: action.CodeDownload,
		downloadable:  true,
		extension:     "mp4",
	},
	message.KindAnimation: {
		possible:      []string{action.CodeDeleteRequest, action.CodeKeep, action.CodeDownload},
		defaultAction: action.CodeDownload,
		downloadable:  true,
		extension:     "mp4",
	},
	message.KindAudio: {
		possible:      []string{action.CodeDeleteRequest, action.CodeKeep, action.CodeDownload},
		defaultAction: action.CodeDownload,
		downloadable:  true,
		extension:     "mp3",
	},
	message.KindVoice: {
		possible:      []string{action.CodeDeleteRequest, action.CodeKeep, action.CodeDownload},
		defaultAction: action.CodeDownload,
		downloadable:  true,
		extension:     "ogg",
	},
	message.KindVideoNote: {
		possible:      []string{action.CodeDeleteRequest, action.CodeKeep, action.CodeDownload},
		defaultAction: action.CodeDownload,
		downloadable:  true,
		extension:     "mp4",
	},
	message.KindSticker: {
		possible:      []string{action.CodeDeleteRequest, action.CodeDownload, action.CodeDownloadAll},
		defaultAction: action.CodeDeleteNow,
		downloadable:  true,
		extension:     "webp",
	},
	message.KindDocument: {
		possible:      []string{action.CodeDeleteRequest, action.CodeKeep, action.CodeDownload},
		defaultAction: action.CodeDownload,
		downloadable:  true,
		extension:     "bin",
	},
}

func specFor(kind message.ContentKind) kindSpec {
	if spec, ok := kindSpecs[kind]; ok {
		return spec
	}
	return kindSpecs[message.KindText]
}

// bestVariant picks the download candidate from the stored file variants.
// Photos carry every thumbnail size, so the tallest one wins.
func bestVariant(st *message.State) (message.FileVariant, bool) {
	if len(st.Files) == 0 {
		return message.FileVariant{}, false
	}
	best := st.Files[0]
	for _, variant := range st.Files[1:] {
		if variant.Height > best.Height {
			best = variant
		}
	}
	return best, true
}

// fileName builds the on-disk name for a variant. Video stickers download as
// webm regardless of the kind's default extension.
func fileName(st *message.State, variant message.FileVariant) string {
	ext := specFor(st.ContentKind).extension
	if st.ContentKind == message.KindSticker && variant.IsVideo {
		ext = "webm"
	}
	return fmt.Sprintf("%d_%d-%s.%s", st.UserID, st.ChatID, variant.FileUniqueID, ext)
}
