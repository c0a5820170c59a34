// Copyright © 2024 The NRefactory authors

package syntax

// Kind tags a node with the construct it represents.
type Kind uint

// Kind constants for the C# constructs the rules and the semantic model care
// about. Everything else is KindOther and is still walked.
const (
	KindInvalid Kind = iota
	KindError
	KindOther

	// Declarations
	KindCompilationUnit
	KindUsing
	KindNamespace
	KindClass
	KindStruct
	KindInterface
	KindRecord
	KindEnum
	KindEnumMember
	KindDelegate
	KindField
	KindEventField
	KindEvent
	KindProperty
	KindAccessor
	KindMethod
	KindConstructor
	KindDestructor
	KindConstructorInitializer
	KindParameterList
	KindParameter
	KindAttributeList
	KindAttribute
	KindBaseList
	KindVariableDeclaration
	KindVariableDeclarator

	// Statements and expressions
	KindBlock
	KindAssignment
	KindInvocation
	KindArgumentList
	KindArgument
	KindObjectCreation
	KindArrayCreation
	KindInitializer
	KindLambda
	KindAnonymousMethod
	KindMemberAccess
	KindIdentifier
	KindQualifiedName
	KindThis
	KindBase

	numKinds
)

var kindStrings = [numKinds]string{
	KindInvalid:                "invalid",
	KindError:                  "error",
	KindOther:                  "other",
	KindCompilationUnit:        "compilation-unit",
	KindUsing:                  "using",
	KindNamespace:              "namespace",
	KindClass:                  "class",
	KindStruct:                 "struct",
	KindInterface:              "interface",
	KindRecord:                 "record",
	KindEnum:                   "enum",
	KindEnumMember:             "enum-member",
	KindDelegate:               "delegate",
	KindField:                  "field",
	KindEventField:             "event-field",
	KindEvent:                  "event",
	KindProperty:               "property",
	KindAccessor:               "accessor",
	KindMethod:                 "method",
	KindConstructor:            "constructor",
	KindDestructor:             "destructor",
	KindConstructorInitializer: "constructor-initializer",
	KindParameterList:          "parameter-list",
	KindParameter:              "parameter",
	KindAttributeList:          "attribute-list",
	KindAttribute:              "attribute",
	KindBaseList:               "base-list",
	KindVariableDeclaration:    "variable-declaration",
	KindVariableDeclarator:     "variable-declarator",
	KindBlock:                  "block",
	KindAssignment:             "assignment",
	KindInvocation:             "invocation",
	KindArgumentList:           "argument-list",
	KindArgument:               "argument",
	KindObjectCreation:         "object-creation",
	KindArrayCreation:          "array-creation",
	KindInitializer:            "initializer",
	KindLambda:                 "lambda",
	KindAnonymousMethod:        "anonymous-method",
	KindMemberAccess:           "member-access",
	KindIdentifier:             "identifier",
	KindQualifiedName:          "qualified-name",
	KindThis:                   "this",
	KindBase:                   "base",
}

func (k Kind) String() string {
	if k >= numKinds {
		return kindStrings[KindInvalid]
	}
	return kindStrings[k]
}

// IsTypeDeclaration reports whether k declares a type with a member body.
// Delegates are types too but have no members, so they are excluded.
func (k Kind) IsTypeDeclaration() bool {
	switch k {
	case KindClass, KindStruct, KindInterface, KindRecord, KindEnum:
		return true
	}
	return false
}

// IsMemberDeclaration reports whether k declares a member of a type.
func (k Kind) IsMemberDeclaration() bool {
	switch k {
	case KindField, KindEventField, KindEvent, KindProperty, KindMethod,
		KindConstructor, KindDestructor, KindEnumMember:
		return true
	}
	return false
}
