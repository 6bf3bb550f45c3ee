// Package mpcconfig holds the process-wide configuration the JIT pipeline
// needs: the system compiler to invoke and the flags to pass it. There is no
// file format or environment-variable parsing here - spec.md is explicit
// that none is required, so these are plain package-level vars a process
// sets once at startup.
package mpcconfig

// Compiler describes how to invoke the system compiler that turns emitted
// evaluator source into a shared object.
type Compiler struct {
	// Path is the compiler executable, resolved via exec.LookPath semantics
	// if it contains no path separator.
	Path string
	// Flags are extra flags passed after the source file and -o output.
	// "-shared -fPIC" are always added by the JIT loader; Flags is for
	// anything beyond that (optimization level, include paths, ...).
	Flags []string
}

// DefaultCompiler mirrors the original engine's hardcoded CPP_COMPILER_PATH
// default: a reasonable out-of-the-box value callers are free to override.
var DefaultCompiler = Compiler{
	Path:  "cc",
	Flags: []string{"-O2", "-lm"},
}
