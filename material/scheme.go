// material/scheme.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package material

import (
	"encoding/json"
	"slices"
)

// RenderScheme is a named way of rendering materials (e.g. depth-only for
// shadow maps). A material's techniques are matched to schemes by name,
// then by compatibility, and finally by rewriting a default technique with
// the scheme's rewriter.
type RenderScheme struct {
	Name string `json:"-"`
	// CompatibleWithDefault indicates that techniques of the default
	// scheme may be used for this scheme as they are.
	CompatibleWithDefault bool     `json:"compatible_with_default,omitempty"`
	Compatible            []string `json:"compatible,omitempty"`
	Rewriter              Rewriter `json:"rewriter,omitempty"`
}

// IsCompatibleWith reports whether techniques of the other scheme may be
// used to render this one; nil represents the default scheme. The
// relation isn't symmetric.
func (s *RenderScheme) IsCompatibleWith(other *RenderScheme) bool {
	if other == nil {
		return s.CompatibleWithDefault
	}
	return other == s || slices.Contains(s.Compatible, other.Name)
}

type renderSchemeJSON struct {
	CompatibleWithDefault bool            `json:"compatible_with_default,omitempty"`
	Compatible            []string        `json:"compatible,omitempty"`
	Rewriter              json.RawMessage `json:"rewriter,omitempty"`
}

func (s RenderScheme) MarshalJSON() ([]byte, error) {
	j := renderSchemeJSON{CompatibleWithDefault: s.CompatibleWithDefault, Compatible: s.Compatible}
	if s.Rewriter != nil {
		b, err := rewriterVariants.Encode(s.Rewriter)
		if err != nil {
			return nil, err
		}
		j.Rewriter = b
	}
	return json.Marshal(j)
}

func (s *RenderScheme) UnmarshalJSON(data []byte) error {
	var j renderSchemeJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	s.CompatibleWithDefault = j.CompatibleWithDefault
	s.Compatible = j.Compatible
	s.Rewriter = nil
	if len(j.Rewriter) > 0 && string(j.Rewriter) != "null" {
		r, err := rewriterVariants.Decode(j.Rewriter)
		if err != nil {
			return err
		}
		s.Rewriter = r
	}
	return nil
}
