// Package templates stores named prompt templates and renders them against
// a context mapping.
package templates

import (
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Default is the process-wide registry used when callers do not bring their own.
var Default = NewRegistry()

// Registry maps template names to template strings. Names are canonicalised,
// so "summary", ":summary" and "Summary" address the same entry.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]string
	logger    *zerolog.Logger
}

func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]string)}
}

// SetLogger routes load warnings to l instead of the global logger.
func (r *Registry) SetLogger(l zerolog.Logger) {
	r.mu.Lock()
	r.logger = &l
	r.mu.Unlock()
}

// Register stores tmpl under name, replacing any previous entry.
func (r *Registry) Register(name, tmpl string) {
	r.mu.Lock()
	r.templates[canonical(name)] = tmpl
	r.mu.Unlock()
}

func (r *Registry) Get(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[canonical(name)]
	return t, ok
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.templates))
	for n := range r.templates {
		names = append(names, n)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

func (r *Registry) Clear() {
	r.mu.Lock()
	r.templates = make(map[string]string)
	r.mu.Unlock()
}

func (r *Registry) log() *zerolog.Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.logger != nil {
		return r.logger
	}
	return &log.Logger
}

func canonical(name string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ":"))
}
