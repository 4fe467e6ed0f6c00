package router

import (
	"fmt"
	"strings"
)

// segment is one slash-delimited piece of a route pattern.
type segment struct {
	literal string
	param   string
}

func (s segment) isParam() bool { return s.param != "" }

// pattern is a parsed route pattern such as /db/update/:id.
type pattern struct {
	raw      string
	segments []segment
}

// parsePattern validates raw and splits it into segments. Patterns start with
// "/", contain no empty segments (except the root pattern "/"), and declare
// parameters as ":name" occupying a whole segment.
func parsePattern(raw string) (*pattern, error) {
	if !strings.HasPrefix(raw, "/") {
		return nil, fmt.Errorf("%w: %q must start with /", ErrInvalidPattern, raw)
	}

	p := &pattern{raw: raw}
	if raw == "/" {
		return p, nil
	}

	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw[1:], "/") {
		if part == "" {
			return nil, fmt.Errorf("%w: %q has an empty segment", ErrInvalidPattern, raw)
		}
		if strings.ContainsAny(part, "{}*") {
			return nil, fmt.Errorf("%w: %q uses unsupported syntax in segment %q", ErrInvalidPattern, raw, part)
		}

		if !strings.HasPrefix(part, ":") {
			if strings.Contains(part, ":") {
				return nil, fmt.Errorf("%w: %q mixes text and a parameter in segment %q", ErrInvalidPattern, raw, part)
			}
			p.segments = append(p.segments, segment{literal: part})
			continue
		}

		name := part[1:]
		if !validParamName(name) {
			return nil, fmt.Errorf("%w: %q has invalid parameter name %q", ErrInvalidPattern, raw, name)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %q declares parameter %q twice", ErrInvalidPattern, raw, name)
		}
		seen[name] = struct{}{}
		p.segments = append(p.segments, segment{param: name})
	}

	return p, nil
}

func validParamName(name string) bool {
	if name == "" {
		return false
	}
	for i, ch := range name {
		switch {
		case ch == '_', ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z':
		case i > 0 && ch >= '0' && ch <= '9':
		default:
			return false
		}
	}
	return true
}

// chiPattern renders the pattern in chi syntax, /db/update/{id}.
func (p *pattern) chiPattern() string {
	if len(p.segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range p.segments {
		b.WriteByte('/')
		if s.isParam() {
			b.WriteString("{" + s.param + "}")
		} else {
			b.WriteString(s.literal)
		}
	}
	return b.String()
}

// shape identifies patterns that match exactly the same paths. Parameter
// names are erased, so /a/:x and /a/:y share a shape.
func (p *pattern) shape() string {
	if len(p.segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range p.segments {
		b.WriteByte('/')
		if s.isParam() {
			b.WriteByte(':')
		} else {
			b.WriteString(s.literal)
		}
	}
	return b.String()
}

// params lists the parameter names in declaration order.
func (p *pattern) params() []string {
	var names []string
	for _, s := range p.segments {
		if s.isParam() {
			names = append(names, s.param)
		}
	}
	return names
}
