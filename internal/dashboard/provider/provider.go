// Package provider supplies validated dashboard snapshots.
package provider

import (
	"context"
	"fmt"

	"github.com/retailpulse/retailpulse/internal/dashboard"
)

// Source names accepted by New.
const (
	SourceStatic    = "static"
	SourceGenerated = "generated"
)

// Provider returns one dashboard snapshot per call.
type Provider interface {
	Load(ctx context.Context) (dashboard.DashboardData, error)
}

// ProviderFunc adapts a plain function into a Provider.
type ProviderFunc func(ctx context.Context) (dashboard.DashboardData, error)

// Load implements Provider.
func (f ProviderFunc) Load(ctx context.Context) (dashboard.DashboardData, error) {
	return f(ctx)
}

// New resolves a provider by its configured source name.
func New(source string, year int, seed int64) (Provider, error) {
	switch source {
	case SourceStatic, "":
		return StaticProvider{}, nil
	case SourceGenerated:
		return NewGeneratedProvider(year, seed), nil
	default:
		return nil, fmt.Errorf("provider: unknown source %q", source)
	}
}
