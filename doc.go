// Package compileoutput is an mdBook preprocessor that inlines the output of
// build steps into chapters.
//
// # Markers
//
// A chapter line of the form
//
//	{{#compile_output: hello-world}}
//
// (indentation allowed) is replaced by the output of the step's command,
// wrapped in a fenced code block:
//
//	```text
//	<captured output>
//	```
//
// All other lines are copied unchanged. Line endings are normalized to a
// single "\n" after every line.
//
// # Steps
//
// By default a step named S runs "cargo test --release" inside rust_stages/S,
// relative to the working directory mdBook starts the preprocessor in. A
// successful run contributes its standard output; a failing run contributes
// its standard error. A command that cannot be started at all aborts the
// whole book.
//
// Use a custom Compiler to change how a step is turned into text:
//
//	pre := compileoutput.NewPreprocessor(
//	    compileoutput.WithCompiler(compileoutput.CompilerFunc(
//	        func(ctx context.Context, step string) (string, error) {
//	            return "output of " + step, nil
//	        })),
//	)
//
// # Processing
//
// Chapters are visited depth first in document order and steps run one at a
// time, never concurrently. Draft chapters (no backing file) are skipped.
//
// The mdbook-compile-output command wires this package to mdBook's
// preprocessor protocol: one JSON [context, book] array on stdin, the book on
// stdout.
package compileoutput
