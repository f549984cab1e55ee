package templates

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var placeholder = regexp.MustCompile(`%%|%<([^>]+)>s|%\{([^}]+)\}`)

// Render fills %<key>s and %{key} placeholders from vars. When every
// referenced key is present the template is interpolated in full and %%
// becomes %. Otherwise only the keys that are present are substituted and
// everything else, unresolved placeholders included, is left as written.
func Render(tmpl string, vars map[string]any) string {
	if out, ok := interpolate(tmpl, vars); ok {
		return out
	}
	return substitute(tmpl, vars)
}

func interpolate(tmpl string, vars map[string]any) (string, bool) {
	complete := true
	out := placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		if m == "%%" {
			return "%"
		}
		v, ok := vars[placeholderKey(m)]
		if !ok {
			complete = false
			return m
		}
		return str(v)
	})
	return out, complete
}

func substitute(tmpl string, vars map[string]any) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := tmpl
	for _, k := range keys {
		v := str(vars[k])
		out = strings.ReplaceAll(out, "%<"+k+">s", v)
		out = strings.ReplaceAll(out, "%{"+k+"}", v)
	}
	return out
}

func placeholderKey(m string) string {
	if strings.HasPrefix(m, "%<") {
		return m[2 : len(m)-2]
	}
	return m[2 : len(m)-1]
}

func str(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
