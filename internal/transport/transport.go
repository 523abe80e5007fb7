package transport

import (
	"context"
	"fmt"
	"http_relay/internal/peer"
	"sort"
	"strings"
	"sync"
)

// Dialer produces a connected peer for an address without its scheme prefix.
type Dialer interface {
	Dial(ctx context.Context, address string) (*peer.Peer, error)
}

type Registry interface {
	Register(scheme string, dialer Dialer) error
	Dial(ctx context.Context, address string) (*peer.Peer, error)
	Schemes() []string
}

type registry struct {
	mu      sync.RWMutex
	dialers map[string]Dialer
}

var (
	ErrUnknownScheme = fmt.Errorf("unknown transport scheme")
	ErrSchemeInUse   = fmt.Errorf("transport scheme already registered")
	ErrInvalidAddr   = fmt.Errorf("invalid transport address")
)

func NewRegistry() Registry {
	return &registry{
		dialers: make(map[string]Dialer),
	}
}

func (r *registry) Register(scheme string, dialer Dialer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.dialers[scheme]; exists {
		return fmt.Errorf("%w: %s", ErrSchemeInUse, scheme)
	}
	r.dialers[scheme] = dialer
	return nil
}

// Dial resolves "scheme:rest" and hands rest to the registered dialer.
func (r *registry) Dial(ctx context.Context, address string) (*peer.Peer, error) {
	scheme, rest, ok := strings.Cut(address, ":")
	if !ok || rest == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddr, address)
	}

	r.mu.RLock()
	dialer, exists := r.dialers[scheme]
	r.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %s (known: %s)", ErrUnknownScheme, scheme, strings.Join(r.Schemes(), ", "))
	}

	return dialer.Dial(ctx, rest)
}

func (r *registry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemes := make([]string, 0, len(r.dialers))
	for scheme := range r.dialers {
		schemes = append(schemes, scheme)
	}
	sort.Strings(schemes)
	return schemes
}
