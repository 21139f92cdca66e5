// Package replication mirrors operator commands from a primary instance to
// its configured backups and tracks backup reachability. There is no
// handshake or leader election: the operator decides which machine is the
// primary, and backups just accept control-API commands like any standalone
// instance.
package replication

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const forwardTimeout = 3 * time.Second

// Commands excluded from mirroring. Reload recovers a single malfunctioning
// machine and must not disturb machines that are presenting correctly.
var excluded = map[string]struct{}{
	"reload": {},
}

// Replicator forwards commands to every configured backup, independently
// and fire-and-forget: an unreachable backup never blocks the others nor
// the primary's own execution.
type Replicator struct {
	backups func() []string
	port    func() int
	client  *http.Client
	log     zerolog.Logger
}

// NewReplicator creates a replicator. backups and port are providers so
// preference changes apply without restart.
func NewReplicator(backups func() []string, port func() int, log zerolog.Logger) *Replicator {
	return &Replicator{
		backups: backups,
		port:    port,
		client:  &http.Client{Timeout: forwardTimeout},
		log:     log,
	}
}

// Forward mirrors one command to every backup concurrently. Returns
// immediately; delivery failures are logged and reflected only in backup
// health, never in the primary's command result.
func (r *Replicator) Forward(command string, body []byte) {
	if _, skip := excluded[command]; skip {
		return
	}
	hosts := r.backups()
	if len(hosts) == 0 {
		return
	}
	port := r.port()

	g := new(errgroup.Group)
	for _, host := range hosts {
		g.Go(func() error {
			if err := r.send(host, port, command, body); err != nil {
				r.log.Warn().Err(err).Str("backup", host).Str("command", command).Msg("replication failed")
			}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
	}()
}

func (r *Replicator) send(host string, port int, command string, body []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), forwardTimeout)
	defer cancel()

	url := fmt.Sprintf("http://%s:%d/%s", host, port, command)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("backup returned %s", resp.Status)
	}
	return nil
}
