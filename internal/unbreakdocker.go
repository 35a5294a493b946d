package internal

import (
	"os"
	"os/exec"
)

// UnbreakDocker connects the current dev container to the default bridge
// network so tests can reach containers started by testcontainers. It is a
// no-op outside docker.
func UnbreakDocker() {
	if hostname, err := os.Hostname(); err == nil {
		exec.Command("docker", "network", "connect", "bridge", hostname).Run()
	}
}
