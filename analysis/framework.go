// Copyright © 2024 The NRefactory authors

package analysis

// frameworkTypes maps simple names of well-known framework types to the
// namespace that declares them. Analysis covers a single compilation unit,
// so these are the only external types an attribute or type reference can
// resolve to, and only when the unit imports the namespace.
var frameworkTypes = map[string]string{
	"OptionalAttribute":              "System.Runtime.InteropServices",
	"DefaultParameterValueAttribute": "System.Runtime.InteropServices",
	"InAttribute":                    "System.Runtime.InteropServices",
	"OutAttribute":                   "System.Runtime.InteropServices",
	"MarshalAsAttribute":             "System.Runtime.InteropServices",
	"DllImportAttribute":             "System.Runtime.InteropServices",
	"StructLayoutAttribute":          "System.Runtime.InteropServices",
	"ComVisibleAttribute":            "System.Runtime.InteropServices",
	"OptionalFieldAttribute":         "System.Runtime.Serialization",
	"CallerMemberNameAttribute":      "System.Runtime.CompilerServices",
	"CallerFilePathAttribute":        "System.Runtime.CompilerServices",
	"CallerLineNumberAttribute":      "System.Runtime.CompilerServices",
	"ObsoleteAttribute":              "System",
	"FlagsAttribute":                 "System",
	"SerializableAttribute":          "System",
	"AttributeUsageAttribute":        "System",
	"ParamArrayAttribute":            "System",
	"ConditionalAttribute":           "System.Diagnostics",
	"DebuggerStepThroughAttribute":   "System.Diagnostics",
	"EventHandler":                   "System",
	"EventArgs":                      "System",
	"Action":                         "System",
	"Func":                           "System",
	"Object":                         "System",
	"String":                         "System",
	"Attribute":                      "System",
}

// frameworkType returns the full name of a well-known framework type when
// one of the imported namespaces declares it.
func frameworkType(name string, imports map[string]bool) (string, bool) {
	ns, ok := frameworkTypes[name]
	if !ok || !imports[ns] {
		return "", false
	}
	return ns + "." + name, true
}
