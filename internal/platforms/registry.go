package platforms

import (
	"fmt"

	config "github.com/socialsight/socialsight/configs"
)

// Adapter is the full integration surface for one platform.
type Adapter interface {
	Provider
	Publisher
}

// Registry maps platform names to their adapters. Handlers and jobs only
// ever go through here, never through a concrete adapter type.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry wires every supported platform from the application config.
func NewRegistry(cfg config.Config) *Registry {
	return &Registry{adapters: map[string]Adapter{
		"facebook":  NewFacebook(cfg.Facebook),
		"instagram": NewInstagram(cfg.Instagram),
		"twitter":   NewTwitter(cfg.Twitter),
		"linkedin":  NewLinkedIn(cfg.LinkedIn),
		"google":    NewGoogle(cfg.Google),
		"tiktok":    NewTiktok(cfg.Tiktok),
	}}
}

// Get returns the adapter for a platform name.
func (r *Registry) Get(platform string) (Adapter, error) {
	a, ok := r.adapters[platform]
	if !ok {
		return nil, fmt.Errorf("unsupported platform: %s", platform)
	}
	return a, nil
}

// Names returns the registered platform names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}
