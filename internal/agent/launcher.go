package agent

import (
	"os/exec"
	"runtime"

	"github.com/sigil-io/agent/internal/sessions"
)

// BrowserLauncher opens request URLs in the default system browser.
func BrowserLauncher() sessions.Launcher {
	return sessions.LauncherFunc(openBrowser)
}

func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start"}
	case "darwin":
		cmd = "open"
	default: // linux, freebsd, openbsd, netbsd
		cmd = "xdg-open"
	}
	args = append(args, url)
	return exec.Command(cmd, args...).Start()
}
