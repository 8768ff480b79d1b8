package system

import "github.com/atotto/clipboard"

// ClipboardReader reads the current text content of the OS clipboard.
type ClipboardReader interface {
	ReadAll() (string, error)
}

// OSClipboard reads the clipboard through the platform tooling (xclip/xsel/wl-paste,
// pbpaste or the Win32 API).
type OSClipboard struct{}

// NewOSClipboard creates an OSClipboard.
func NewOSClipboard() *OSClipboard {
	return &OSClipboard{}
}

// ReadAll returns the clipboard text.
func (c *OSClipboard) ReadAll() (string, error) {
	if clipboard.Unsupported {
		return "", ErrUnsupportedPlatform
	}
	return clipboard.ReadAll()
}
