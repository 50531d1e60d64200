package exporters

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Factory builds an encoder writing to w.
type Factory func(w io.Writer, options Options) (Encoder, error)

var registry = map[string]Factory{}

func Register(format string, factory Factory) error {
	format = strings.ToLower(strings.TrimSpace(format))
	if _, exists := registry[format]; exists {
		return fmt.Errorf("exporters: format %q already registered", format)
	}
	registry[format] = factory
	return nil
}

// Get returns a new encoder for the format, writing to w.
func Get(format string, w io.Writer, options Options) (Encoder, error) {
	factory, ok := registry[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, fmt.Errorf("unsupported format: %q (available: %s)",
			format, strings.Join(List(), ", "))
	}
	return factory(w, options)
}

// List returns the registered format names, sorted.
func List() []string {
	formats := make([]string, 0, len(registry))
	for name := range registry {
		formats = append(formats, name)
	}
	sort.Strings(formats)
	return formats
}

func MustRegister(format string, factory Factory) {
	if err := Register(format, factory); err != nil {
		panic(err)
	}
}
