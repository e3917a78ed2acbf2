package content

import _ "embed"

//go:embed capture.js
var captureJS []byte

// CaptureScript returns the JS capture layer injected into every frame of
// a recorded document. Installation is idempotent: the script checks its
// install flag before attaching anything, so repeated injection is safe.
func CaptureScript() string {
	return string(captureJS)
}
