package confloader

import (
	"errors"
	"strings"
)

// ErrReadBytesNotSupported is returned when ReadBytes is called on a map provider.
var ErrReadBytesNotSupported = errors.New("confloader: map provider has no byte form")

// mapProvider feeds a nested or dotted map into koanf.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, ErrReadBytesNotSupported
}

// Read expands dotted keys ("api.base_url") into nested maps so flags and
// defaults merge with file values key by key.
func (m mapProvider) Read() (map[string]any, error) {
	out := make(map[string]any, len(m))
	for k, v := range m {
		setPath(out, strings.Split(k, "."), v)
	}
	return out, nil
}

func setPath(dst map[string]any, path []string, v any) {
	if len(path) == 1 {
		if nested, ok := v.(map[string]any); ok {
			sub, _ := dst[path[0]].(map[string]any)
			if sub == nil {
				sub = make(map[string]any, len(nested))
				dst[path[0]] = sub
			}
			for k, nv := range nested {
				setPath(sub, strings.Split(k, "."), nv)
			}
			return
		}
		dst[path[0]] = v
		return
	}
	sub, _ := dst[path[0]].(map[string]any)
	if sub == nil {
		sub = make(map[string]any)
		dst[path[0]] = sub
	}
	setPath(sub, path[1:], v)
}
