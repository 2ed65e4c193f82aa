package config

import (
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// keyNode mirrors the yaml layout of Config. A nil node is a leaf value.
type keyNode map[string]keyNode

var configKeys = keyTree(reflect.TypeOf(Config{}))

func keyTree(t reflect.Type) keyNode {
	node := keyNode{}
	for i := range t.NumField() {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			continue
		}
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct {
			node[name] = keyTree(ft)
		} else {
			node[name] = nil
		}
	}
	return node
}

// ParseKey splits a dotted key such as "draft.model" and checks it names
// a section or value of Config.
func ParseKey(raw string) ([]string, error) {
	if raw == "" {
		return nil, &ConfigError{Message: "empty config key"}
	}
	parts := strings.Split(raw, ".")
	node := configKeys
	for i, p := range parts {
		if p == "" {
			return nil, &ConfigError{Message: fmt.Sprintf("config key %q has an empty segment", raw)}
		}
		if node == nil {
			return nil, &ConfigError{Message: fmt.Sprintf("%s is a value, not a section", strings.Join(parts[:i], "."))}
		}
		child, ok := node[p]
		if !ok {
			return nil, &ConfigError{Message: "unknown config key: " + strings.Join(parts[:i+1], ".")}
		}
		node = child
	}
	return parts, nil
}

// section returns the map that holds the last segment of path. Missing
// or non-map sections are replaced with empty maps when create is set.
func section(root map[string]any, path []string, create bool) (map[string]any, bool) {
	m := root
	for _, key := range path[:len(path)-1] {
		next, ok := m[key].(map[string]any)
		if !ok {
			if !create {
				return nil, false
			}
			next = map[string]any{}
			m[key] = next
		}
		m = next
	}
	return m, true
}

// GetKey reads the value at path from a raw config map.
func GetKey(root map[string]any, path []string) (any, bool) {
	m, ok := section(root, path, false)
	if !ok {
		return nil, false
	}
	v, ok := m[path[len(path)-1]]
	return v, ok
}

func SetKey(root map[string]any, path []string, value any) {
	m, _ := section(root, path, true)
	m[path[len(path)-1]] = value
}

// UnsetKey deletes the value at path and reports whether it existed.
func UnsetKey(root map[string]any, path []string) bool {
	m, ok := section(root, path, false)
	if !ok {
		return false
	}
	last := path[len(path)-1]
	if _, ok := m[last]; !ok {
		return false
	}
	delete(m, last)
	return true
}

// DecodeRaw turns a raw config map into a Config with defaults filled in,
// the way Load would read it back from disk.
func DecodeRaw(raw map[string]any) (Config, error) {
	cfg := Defaults()
	data, err := yaml.Marshal(raw)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "invalid value: " + err.Error()}
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// IssuesUnder returns the validation issues of cfg at or below key.
func IssuesUnder(cfg *Config, key string) []ValidationIssue {
	var out []ValidationIssue
	for _, issue := range Validate(cfg) {
		if issue.Path == key || strings.HasPrefix(issue.Path, key+".") {
			out = append(out, issue)
		}
	}
	return out
}
