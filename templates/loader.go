package templates

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads templates from path, which may be a YAML document or a
// directory of template files. A missing path is not an error.
func (r *Registry) Load(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.IsDir() {
		return r.LoadDirectory(path)
	}
	return r.LoadFile(path)
}

// LoadFile merges a YAML mapping of name -> template into the registry. A
// value may be the template string itself or a mapping with a "template"
// field. Malformed documents are logged and skipped.
func (r *Registry) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read templates %s: %w", path, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		r.log().Warn().Err(err).Str("path", path).Msg("failed to load templates")
		return nil
	}
	for name, v := range doc {
		tmpl, ok := templateValue(v)
		if !ok {
			r.log().Warn().Str("path", path).Str("template", name).Msg("skipping non-string template")
			continue
		}
		r.Register(name, tmpl)
	}
	return nil
}

// LoadDirectory registers one template per regular file in dir, named after
// the file without its extension. Subdirectories are not descended into.
// YAML files contribute their "template" field; anything else is used verbatim.
func (r *Registry) LoadDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read template dir %s: %w", dir, err)
	}

	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".yml", ".yaml":
			var doc any
			if err := yaml.Unmarshal(raw, &doc); err != nil {
				r.log().Warn().Err(err).Str("path", path).Msg("failed to load template")
				continue
			}
			if m, ok := doc.(map[string]any); ok {
				if tmpl, ok := m["template"].(string); ok {
					r.Register(name, tmpl)
				}
				continue
			}
			r.Register(name, scalar(doc))
		default:
			r.Register(name, string(raw))
		}
	}
	return nil
}

func templateValue(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case map[string]any:
		s, ok := t["template"].(string)
		return s, ok
	}
	return "", false
}

func scalar(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
