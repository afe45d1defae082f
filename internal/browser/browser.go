package browser

import (
	"io"

	pkgbrowser "github.com/pkg/browser"
)

// Opener opens a URL in the user's default browser
type Opener interface {
	Open(url string) error
}

// System opens URLs with the platform handler (xdg-open, open, rundll32)
type System struct{}

var _ Opener = System{}

func init() {
	// The platform handlers chatter on stdout; keep the console clean.
	pkgbrowser.Stdout = io.Discard
	pkgbrowser.Stderr = io.Discard
}

// Open launches the default browser
func (System) Open(url string) error {
	return pkgbrowser.OpenURL(url)
}

// Disabled never opens anything
type Disabled struct{}

// Open is a no-op
func (Disabled) Open(string) error { return nil }
