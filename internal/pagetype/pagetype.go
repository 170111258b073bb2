// Package pagetype describes the closed set of page kinds and where each
// kind may be placed in the page tree.
package pagetype

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Kind identifies a page variant.
type Kind string

const (
	KindHome      Kind = "home"
	KindSection   Kind = "section"
	KindBlogIndex Kind = "blog_index"
	KindBlog      Kind = "blog"
)

// NoParent stands for the tree root when checking placements.
const NoParent Kind = ""

var (
	// ErrDisallowedPlacement is returned when a kind may not live under the given parent.
	ErrDisallowedPlacement = errors.New("disallowed placement")
	// ErrUnknownKind is returned for kinds outside the registry.
	ErrUnknownKind = errors.New("unknown page type")
)

// Rule lists the kinds a page may hang under and the kinds it may hold.
type Rule struct {
	Root     bool
	Parents  []Kind
	Children []Kind
}

var rules = map[Kind]Rule{
	KindHome: {
		Root:     true,
		Children: []Kind{KindSection, KindBlogIndex},
	},
	KindSection: {
		Parents: []Kind{KindHome},
	},
	KindBlogIndex: {
		Parents:  []Kind{KindHome},
		Children: []Kind{KindBlog},
	},
	KindBlog: {
		Parents: []Kind{KindBlogIndex},
	},
}

// Kinds returns every registered kind in tree order.
func Kinds() []Kind {
	return []Kind{KindHome, KindSection, KindBlogIndex, KindBlog}
}

// ParseKind maps user input such as "BlogIndex" or "blog-index" to a Kind.
func ParseKind(raw string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	if normalized == "blogindex" {
		normalized = string(KindBlogIndex)
	}
	kind := Kind(normalized)
	if _, ok := rules[kind]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
	return kind, nil
}

// Valid reports whether k is a registered kind.
func (k Kind) Valid() bool {
	_, ok := rules[k]
	return ok
}

// Label is the human readable name used in admin responses.
func (k Kind) Label() string {
	switch k {
	case KindHome:
		return "Home"
	case KindSection:
		return "Section"
	case KindBlogIndex:
		return "Blog index"
	case KindBlog:
		return "Blog"
	case NoParent:
		return "root"
	default:
		return string(k)
	}
}

// Rules returns the placement rule of kind. The slices are copies.
func Rules(kind Kind) (Rule, error) {
	rule, ok := rules[kind]
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return Rule{
		Root:     rule.Root,
		Parents:  slices.Clone(rule.Parents),
		Children: slices.Clone(rule.Children),
	}, nil
}

// AllowedChildren lists the kinds that may be created under kind.
func AllowedChildren(kind Kind) []Kind {
	return slices.Clone(rules[kind].Children)
}

// AllowedParents lists the kinds kind may be created under.
func AllowedParents(kind Kind) []Kind {
	return slices.Clone(rules[kind].Parents)
}

// AcceptsChildren reports whether any page may be created under kind.
func AcceptsChildren(kind Kind) bool {
	return len(rules[kind].Children) > 0
}

// CheckPlacement validates creating a child page of kind child under a parent
// of kind parent. Pass NoParent to place the page at the tree root.
// Both sides of the table must agree.
func CheckPlacement(parent, child Kind) error {
	childRule, ok := rules[child]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, child)
	}

	if parent == NoParent {
		if childRule.Root {
			return nil
		}
		return fmt.Errorf("%w: %s cannot be a root page", ErrDisallowedPlacement, child.Label())
	}

	parentRule, ok := rules[parent]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, parent)
	}

	if !slices.Contains(childRule.Parents, parent) || !slices.Contains(parentRule.Children, child) {
		return fmt.Errorf("%w: %s under %s", ErrDisallowedPlacement, child.Label(), parent.Label())
	}
	return nil
}
