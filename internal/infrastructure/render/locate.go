package render

import (
	"os"
	"os/exec"
	"sync"
)

// Fixed installation paths probed for a usable browser binary, roughly in
// order of how common the install is on each platform.
var probePaths = []string{
	// Linux
	"/usr/bin/chromium",
	"/usr/bin/chromium-browser",
	"/usr/bin/google-chrome",
	"/usr/bin/google-chrome-stable",
	"/snap/bin/chromium",
	// macOS
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
	"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge",
	// Windows
	`C:\Program Files\Google\Chrome\Application\chrome.exe`,
	`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	`C:\Program Files\Chromium\Application\chrome.exe`,
	`C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`,
}

// PATH lookups tried after the fixed locations.
var probeNames = []string{"chromium", "chromium-browser", "google-chrome", "chrome", "msedge"}

// binaryCache performs the browser lookup exactly once and serves the cached
// outcome, success or failure, for the rest of the process lifetime.
type binaryCache struct {
	once sync.Once
	path string
	err  error
}

func (c *binaryCache) resolve(probe func() (string, error)) (string, error) {
	c.once.Do(func() {
		c.path, c.err = probe()
	})
	return c.path, c.err
}

var defaultBinary binaryCache

// LocateBinary returns the headless browser executable used for rendering.
// The filesystem probe runs once per process and its result is cached; when
// no candidate exists every render fails fast without spawning anything.
func LocateBinary() (string, error) {
	return defaultBinary.resolve(probeBinary)
}

func probeBinary() (string, error) {
	for _, path := range probePaths {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	for _, name := range probeNames {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", NewError(ErrCodeNotFound, "renderer not found", nil)
}
