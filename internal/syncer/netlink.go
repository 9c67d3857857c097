package syncer

import (
	"context"
	"fmt"
	"net"
)

// Netlink models the network connectivity resource. Acquire must respect
// the context deadline; Release is safe to call on every exit path,
// acquired or not.
type Netlink interface {
	Acquire(ctx context.Context) error
	Release()
}

// StaticLink is a Netlink for hosts with permanent connectivity.
type StaticLink struct{}

func (StaticLink) Acquire(ctx context.Context) error { return ctx.Err() }
func (StaticLink) Release()                          {}

// ProbeLink verifies connectivity by dialing a well-known address before
// the sync proceeds. It holds no resources, so Release is a no-op.
type ProbeLink struct {
	Addr string // host:port, e.g. "1.1.1.1:53"
}

// Acquire dials the probe address within the context deadline.
func (l ProbeLink) Acquire(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", l.Addr)
	if err != nil {
		return fmt.Errorf("connectivity probe to %s failed: %w", l.Addr, err)
	}
	conn.Close()
	return nil
}

func (l ProbeLink) Release() {}
