// Package result defines the search result types shared by the intent
// classifiers, the catalog matcher, and the result pipeline.
package result

import "fmt"

// Kind is the closed set of result categories. The activator switches
// exhaustively over it; there is no unknown-kind fallback.
type Kind int

const (
	KindApp Kind = iota
	KindFile
	KindCalc
	KindWeb
	KindAction
	KindInfo
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindApp:
		return "app"
	case KindFile:
		return "file"
	case KindCalc:
		return "calc"
	case KindWeb:
		return "web"
	case KindAction:
		return "action"
	case KindInfo:
		return "info"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind converts a wire name back into a Kind. It is used at the JSON
// boundary only; core code never round-trips through strings.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "app":
		return KindApp, nil
	case "file":
		return KindFile, nil
	case "calc":
		return KindCalc, nil
	case "web":
		return KindWeb, nil
	case "action":
		return KindAction, nil
	case "info":
		return KindInfo, nil
	}
	return 0, fmt.Errorf("unknown result kind %q", s)
}

// MarshalText implements encoding.TextMarshaler so Kind serializes as its
// wire name in JSON payloads.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Result is a single actionable row in the launcher list. Ownership passes
// to the caller, which is responsible for activation.
type Result struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Target      string `json:"target"` // launch identifier: path, URI, action verb, or calc value
	Kind        Kind   `json:"kind"`
}
