package ingest

import (
	"context"
	"os/exec"
)

// NewOrchestratorProducer builds a ProcessProducer that streams logs
// from a pod via `kubectl logs -f`, optionally scoped to a namespace and
// a specific container within the pod.
func NewOrchestratorProducer(namespace, pod, container string) *ProcessProducer {
	name := pod
	if container != "" {
		name += "/" + container
	}
	return NewProcessProducer(name, func(ctx context.Context) *exec.Cmd {
		args := []string{"logs", "-f", "--tail", "1000", pod}
		if namespace != "" {
			args = append(args, "-n", namespace)
		}
		if container != "" {
			args = append(args, "-c", container)
		}
		return exec.CommandContext(ctx, "kubectl", args...)
	})
}
