package net

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

const serviceType = "_thermalboard._tcp"

// DefaultBrowseTimeout bounds a discovery query when ctx has no deadline.
const DefaultBrowseTimeout = 3 * time.Second

// Board is a mirror found on the local network.
type Board struct {
	Instance string
	Addr     string
	Info     []string
}

// Advertise announces a mirror on port under the host name. Close the returned
// server to withdraw the announcement.
func Advertise(port int, info ...string) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}
	if len(info) == 0 {
		info = []string{"ThermalBoard"}
	}

	service, err := mdns.NewMDNSService(host, serviceType, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service, Logger: log.New(io.Discard, "", 0)})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Browse queries the network for mirrors and calls found for each reachable
// one. It returns when ctx is done or the query times out.
func Browse(ctx context.Context, found func(Board)) error {
	timeout := DefaultBrowseTimeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}
	if timeout <= 0 {
		return ctx.Err()
	}

	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		seen := make(map[string]bool)
		for e := range entries {
			b, ok := boardFromEntry(e)
			if !ok || seen[b.Addr] {
				continue
			}
			seen[b.Addr] = true
			found(b)
		}
	}()

	params := mdns.DefaultParams(serviceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	params.Logger = log.New(io.Discard, "", 0)
	err := mdns.Query(params)
	close(entries)
	<-done
	if err != nil {
		return fmt.Errorf("mdns query: %w", err)
	}
	return nil
}

func boardFromEntry(e *mdns.ServiceEntry) (Board, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Board{}, false
	}
	return Board{
		Instance: e.Name,
		Addr:     net.JoinHostPort(e.AddrV4.String(), fmt.Sprint(e.Port)),
		Info:     e.InfoFields,
	}, true
}
