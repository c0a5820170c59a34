// Copyright © 2024 The NRefactory authors

package lint

// Stable diagnostic identifiers. An identifier keeps its meaning forever;
// retired rules keep their number so stored suppressions never change
// meaning.
const (
	IDPartialTypeWithSinglePart                 = "NR0001"
	IDConvertClosureToMethod                    = "NR0002"
	IDBaseMethodCallWithDefaultParameter        = "NR0003"
	IDEmptyConstructor                          = "NR0004"
	IDEmptyDestructor                           = "NR0005"
	IDEmptyNamespace                            = "NR0006"
	IDEnumUnderlyingTypeIsInt                   = "NR0007"
	IDSealedMemberInSealedClass                 = "NR0008"
	IDNonPublicMethodWithTestAttribute          = "NR0009"
	IDConvertConditionalTernaryToNullCoalescing = "NR0010"
	IDConvertIfStatementToConditionalTernary    = "NR0011"
	IDConvertIfStatementToSwitchStatement       = "NR0012"
	IDConvertNullableToShortForm                = "NR0013"
	IDConvertToStaticType                       = "NR0014"
	IDInvokeAsExtensionMethod                   = "NR0015"
	IDBitwiseOperatorOnEnumWithoutFlags         = "NR0016"
	IDCompareNonConstrainedGenericWithNull      = "NR0017"
	IDCompareOfFloatsByEqualityOperator         = "NR0018"
	IDConditionalTernaryEqualBranch             = "NR0019"
	IDDelegateSubtraction                       = "NR0020"
	IDDoNotCallOverridableMethodsInConstructor  = "NR0021"
	IDEmptyGeneralCatchClause                   = "NR0022"
	IDEventUnsubscriptionViaAnonymousDelegate   = "NR0023"
	IDLongLiteralEndingLowerL                   = "NR0024"
	IDNonReadonlyReferencedInGetHashCode        = "NR0025"
	IDObjectCreationAsStatement                 = "NR0026"
	IDOperatorIsCanBeUsed                       = "NR0027"
	IDOptionalParameterRefOut                   = "NR0028"
	IDValueParameterNotUsed                     = "NR0029"
	IDRedundantInternal                         = "NR0030"
	IDRedundantBaseConstructorCall              = "NR0031"
	IDRedundantCommaInInitializer               = "NR0032"
	IDStaticEventSubscription                   = "NR0033"
	IDMemberCanBeMadeStatic                     = "NR0034"
	IDPublicConstructorInAbstractClass          = "NR0035"
	IDSuggestUseVarKeywordEvident               = "NR0036"
)
