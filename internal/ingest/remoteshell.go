package ingest

import (
	"context"
	"os/exec"
	"strings"
)

// NewRemoteShellProducer builds a ProcessProducer that streams logs from
// a remote host by running an arbitrary tail command over ssh (e.g.
// `tail -F /var/log/app.log` or `journalctl -f`), displayed as
// "host: command".
func NewRemoteShellProducer(host string, remoteCmd []string) *ProcessProducer {
	name := host + ": " + strings.Join(remoteCmd, " ")
	return NewProcessProducer(name, func(ctx context.Context) *exec.Cmd {
		args := append([]string{host}, remoteCmd...)
		return exec.CommandContext(ctx, "ssh", args...)
	})
}
