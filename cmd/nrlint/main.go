// Copyright © 2024 The NRefactory authors

// Command nrlint is a rule-driven static analyzer for C# sources.
package main

import "github.com/ezhangle/NRefactory/cmd"

func main() {
	cmd.Execute()
}
