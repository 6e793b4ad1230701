package modules

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"geo_feedback/pkg/probe"
)

// ProbeServer отвечает на /healthz и /ready. /ready проходит все Checks.
type ProbeServer struct {
	Name          string
	Version       string
	ListenAddress string
	Checks        []probe.Check
}

func (p ProbeServer) Run(ctx context.Context, g *errgroup.Group) {
	probeServer := probe.NewServer(
		p.ListenAddress,
		probe.Options{Name: p.Name, Version: p.Version},
		p.Checks...,
	)

	g.Go(func() error {
		if err := probeServer.Run(ctx); err != nil {
			return fmt.Errorf("probeServer.Run: %w", err)
		}
		return nil
	})
}
