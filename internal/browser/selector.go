package browser

import (
	"fmt"
	"strconv"
	"strings"
)

// PartKind identifies how one ">>"-separated segment of a selector matches.
type PartKind string

const (
	// PartCSS is a CSS selector evaluated within the current scope.
	PartCSS PartKind = "css"
	// PartText matches the innermost elements whose whitespace-normalized
	// text contains the value, case-insensitively (text=...).
	PartText PartKind = "text"
	// PartExactText matches the innermost elements whose trimmed text
	// equals the value ("..." or text="...").
	PartExactText PartKind = "exact"
	// PartNthMatch picks the Index-th (1-based) match of a CSS selector
	// (:nth-match(css, n)).
	PartNthMatch PartKind = "nth"
)

// Part is one step of a selector chain. It is serialized to JSON for
// in-page resolution by backends without native support for the dialect.
type Part struct {
	Kind  PartKind `json:"kind"`
	Value string   `json:"value"`
	Index int      `json:"index,omitempty"`
}

// Selector is a parsed selector. Each part is evaluated inside the elements
// matched by the previous one.
type Selector struct {
	Raw   string
	Parts []Part
}

func (s Selector) String() string { return s.Raw }

// ParseSelector parses the playwright selector subset used by scenarios:
//
//	#output >> #permanentAddress       chained scopes
//	text=Current Address :             case-insensitive substring
//	"Desktop"                          exact text
//	:nth-match(li ol [title=Toggle], 3)
//	css=.main-header                   explicit CSS
func ParseSelector(raw string) (Selector, error) {
	if strings.TrimSpace(raw) == "" {
		return Selector{}, fmt.Errorf("empty selector")
	}

	segments, err := splitChain(raw)
	if err != nil {
		return Selector{}, fmt.Errorf("selector %q: %w", raw, err)
	}

	sel := Selector{Raw: raw}
	for _, seg := range segments {
		part, err := parsePart(seg)
		if err != nil {
			return Selector{}, fmt.Errorf("selector %q: %w", raw, err)
		}
		sel.Parts = append(sel.Parts, part)
	}
	return sel, nil
}

// splitChain splits on ">>" outside quotes and parentheses.
func splitChain(raw string) ([]string, error) {
	var (
		segments []string
		depth    int
		quote    rune
		start    int
	)
	runes := []rune(raw)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quote != 0:
			if r == '\\' {
				i++
			} else if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(':
			depth++
		case r == ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced parenthesis")
			}
		case r == '>' && depth == 0 && i+1 < len(runes) && runes[i+1] == '>':
			segments = append(segments, string(runes[start:i]))
			i++
			start = i + 1
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote")
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced parenthesis")
	}
	segments = append(segments, string(runes[start:]))

	for i, s := range segments {
		segments[i] = strings.TrimSpace(s)
		if segments[i] == "" {
			return nil, fmt.Errorf("empty segment in chain")
		}
	}
	return segments, nil
}

func parsePart(seg string) (Part, error) {
	switch {
	case strings.HasPrefix(seg, "text="):
		value := strings.TrimPrefix(seg, "text=")
		if unq, ok := unquote(value); ok {
			return Part{Kind: PartExactText, Value: unq}, nil
		}
		if strings.TrimSpace(value) == "" {
			return Part{}, fmt.Errorf("empty text= value")
		}
		return Part{Kind: PartText, Value: value}, nil

	case strings.HasPrefix(seg, "css="):
		return Part{Kind: PartCSS, Value: strings.TrimPrefix(seg, "css=")}, nil

	case strings.HasPrefix(seg, ":nth-match(") && strings.HasSuffix(seg, ")"):
		inner := strings.TrimSuffix(strings.TrimPrefix(seg, ":nth-match("), ")")
		comma := strings.LastIndex(inner, ",")
		if comma < 0 {
			return Part{}, fmt.Errorf(":nth-match needs a selector and an index")
		}
		css := strings.TrimSpace(inner[:comma])
		n, err := strconv.Atoi(strings.TrimSpace(inner[comma+1:]))
		if err != nil || n < 1 {
			return Part{}, fmt.Errorf(":nth-match index must be a positive integer")
		}
		if css == "" {
			return Part{}, fmt.Errorf(":nth-match selector is empty")
		}
		return Part{Kind: PartNthMatch, Value: css, Index: n}, nil
	}

	if unq, ok := unquote(seg); ok {
		return Part{Kind: PartExactText, Value: unq}, nil
	}
	return Part{Kind: PartCSS, Value: seg}, nil
}

func unquote(s string) (string, bool) {
	if len(s) < 2 {
		return "", false
	}
	q := s[0]
	if (q != '"' && q != '\'') || s[len(s)-1] != q {
		return "", false
	}
	inner := s[1 : len(s)-1]
	inner = strings.ReplaceAll(inner, `\`+string(q), string(q))
	return inner, true
}
