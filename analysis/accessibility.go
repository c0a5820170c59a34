// Copyright © 2024 The NRefactory authors

package analysis

import (
	"github.com/ezhangle/NRefactory/astutil"
	"github.com/ezhangle/NRefactory/syntax"
)

// Accessibility is the declared or implied visibility of a declaration.
type Accessibility int

const (
	AccessNone Accessibility = iota
	AccessPrivate
	AccessPrivateProtected
	AccessProtected
	AccessInternal
	AccessProtectedInternal
	AccessPublic
)

func (a Accessibility) String() string {
	switch a {
	case AccessPrivate:
		return "private"
	case AccessPrivateProtected:
		return "private protected"
	case AccessProtected:
		return "protected"
	case AccessInternal:
		return "internal"
	case AccessProtectedInternal:
		return "protected internal"
	case AccessPublic:
		return "public"
	default:
		return "none"
	}
}

// DeclaredAccessibility returns the accessibility written on decl. ok is
// false when decl carries no accessibility modifier.
func DeclaredAccessibility(decl *syntax.Node) (acc Accessibility, ok bool) {
	if decl == nil {
		return AccessNone, false
	}
	var private, protected, internal, public bool
	for _, m := range decl.Modifiers {
		switch m.Text {
		case "private":
			private = true
		case "protected":
			protected = true
		case "internal":
			internal = true
		case "public":
			public = true
		}
	}
	switch {
	case public:
		return AccessPublic, true
	case protected && internal:
		return AccessProtectedInternal, true
	case private && protected:
		return AccessPrivateProtected, true
	case protected:
		return AccessProtected, true
	case internal:
		return AccessInternal, true
	case private:
		return AccessPrivate, true
	}
	return AccessNone, false
}

// DefaultAccessibility returns the accessibility decl would have without an
// accessibility modifier.
//
// Types and delegates declared directly in a namespace or the compilation
// unit default to internal. Nested types and class or struct members default
// to private. Interface members, nested interface types and enum members are
// public.
func DefaultAccessibility(decl *syntax.Node) Accessibility {
	if decl == nil {
		return AccessNone
	}
	switch {
	case decl.Kind == syntax.KindNamespace:
		return AccessPublic
	case decl.Kind == syntax.KindEnumMember:
		return AccessPublic
	case decl.Kind.IsTypeDeclaration() || decl.Kind == syntax.KindDelegate:
		outer := astutil.EnclosingType(decl)
		if outer == nil {
			return AccessInternal
		}
		if outer.Kind == syntax.KindInterface {
			return AccessPublic
		}
		return AccessPrivate
	case decl.Kind.IsMemberDeclaration():
		outer := astutil.EnclosingType(decl)
		if outer == nil {
			return AccessNone
		}
		if outer.Kind == syntax.KindInterface || outer.Kind == syntax.KindEnum {
			return AccessPublic
		}
		return AccessPrivate
	}
	return AccessNone
}

// EffectiveAccessibility is the declared accessibility of decl, or its
// default when none is written.
func EffectiveAccessibility(decl *syntax.Node) (acc Accessibility, explicit bool) {
	if acc, ok := DeclaredAccessibility(decl); ok {
		return acc, true
	}
	return DefaultAccessibility(decl), false
}
