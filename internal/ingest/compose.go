package ingest

import (
	"context"
	"os/exec"
)

// NewComposeProducer builds a ProcessProducer that streams logs from a
// docker-compose project via `docker compose -f <file> logs -f
// [service]`, scoped to the given compose file and, optionally, a single
// service within it.
func NewComposeProducer(composeFile, service string) *ProcessProducer {
	name := composeFile
	if service != "" {
		name += ":" + service
	}
	return NewProcessProducer(name, func(ctx context.Context) *exec.Cmd {
		args := []string{"compose", "-f", composeFile, "logs", "-f", "--tail", "1000"}
		if service != "" {
			args = append(args, service)
		}
		return exec.CommandContext(ctx, "docker", args...)
	})
}
