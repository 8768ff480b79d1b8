package system

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // capture tools emit PNG
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultJPEGQuality is used when no quality is configured.
const DefaultJPEGQuality = 70

// ScreenCapturer grabs the primary display as a JPEG image.
type ScreenCapturer interface {
	Capture(ctx context.Context) ([]byte, error)
}

const windowsCaptureScript = `Add-Type -AssemblyName System.Windows.Forms,System.Drawing;` +
	`$b=[System.Windows.Forms.Screen]::PrimaryScreen.Bounds;` +
	`$bmp=New-Object System.Drawing.Bitmap $b.Width,$b.Height;` +
	`$g=[System.Drawing.Graphics]::FromImage($bmp);` +
	`$g.CopyFromScreen($b.Location,[System.Drawing.Point]::Empty,$b.Size);` +
	`$ms=New-Object System.IO.MemoryStream;` +
	`$bmp.Save($ms,[System.Drawing.Imaging.ImageFormat]::Png);` +
	`[Convert]::ToBase64String($ms.ToArray())`

// CommandCapturer captures the screen with the platform's screenshot tool
// and re-encodes the PNG it produces as JPEG.
type CommandCapturer struct {
	runner  CommandRunner
	goos    string
	quality int
	getenv  func(string) string
}

// NewCommandCapturer creates a CommandCapturer for the running OS.
func NewCommandCapturer(runner CommandRunner, quality int) *CommandCapturer {
	return NewCommandCapturerFor(runtime.GOOS, runner, quality)
}

// NewCommandCapturerFor creates a CommandCapturer issuing commands for goos.
func NewCommandCapturerFor(goos string, runner CommandRunner, quality int) *CommandCapturer {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &CommandCapturer{runner: runner, goos: goos, quality: quality, getenv: os.Getenv}
}

// Capture returns a JPEG of the primary display.
func (c *CommandCapturer) Capture(ctx context.Context) ([]byte, error) {
	raw, err := c.capturePNG(ctx)
	if err != nil {
		return nil, fmt.Errorf("screen capture failed: %w", err)
	}
	return EncodeJPEG(raw, c.quality)
}

func (c *CommandCapturer) capturePNG(ctx context.Context) ([]byte, error) {
	switch c.goos {
	case "linux":
		if c.getenv("WAYLAND_DISPLAY") != "" {
			return c.runner.Output(ctx, "grim", "-t", "png", "-")
		}
		return c.runner.Output(ctx, "import", "-window", "root", "png:-")
	case "darwin":
		dir, err := os.MkdirTemp("", "pcremote-shot")
		if err != nil {
			return nil, err
		}
		defer os.RemoveAll(dir)

		path := filepath.Join(dir, "screen.png")
		if _, err := c.runner.Output(ctx, "screencapture", "-x", "-t", "png", path); err != nil {
			return nil, err
		}
		return os.ReadFile(path)
	case "windows":
		out, err := c.runner.Output(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", windowsCaptureScript)
		if err != nil {
			return nil, err
		}
		return base64.StdEncoding.DecodeString(strings.TrimSpace(string(out)))
	default:
		return nil, fmt.Errorf("screenshot on %s: %w", c.goos, ErrUnsupportedPlatform)
	}
}

// EncodeJPEG decodes any registered image format and re-encodes it as JPEG.
func EncodeJPEG(raw []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode captured image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
