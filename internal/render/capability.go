package render

import (
	"context"
	"os/exec"
	"regexp"
	"strings"
	"sync"
)

// FilterProber reports the filters an ffmpeg build supports.
type FilterProber interface {
	ListFilters(ctx context.Context) (string, error)
}

type execProber struct {
	binary string
}

func (p execProber) ListFilters(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, p.binary, "-hide_banner", "-filters")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// capabilityCache memoizes filter support for the process lifetime. A failed
// probe caches a negative result so a broken binary is not re-probed per job.
type capabilityCache struct {
	mu      sync.Mutex
	prober  FilterProber
	support map[string]bool
}

func newCapabilityCache(prober FilterProber) *capabilityCache {
	return &capabilityCache{prober: prober, support: make(map[string]bool)}
}

func (c *capabilityCache) hasFilter(ctx context.Context, name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.support[name]; ok {
		return cached
	}

	supported := false
	if listing, err := c.prober.ListFilters(ctx); err == nil {
		pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
		supported = pattern.MatchString(listing)
	}
	c.support[name] = supported
	return supported
}

func defaultProber(binary string) FilterProber {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return execProber{binary: binary}
}
