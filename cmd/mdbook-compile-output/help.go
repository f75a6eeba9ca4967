package main

import (
	"fmt"
	"io"
)

// printUsage prints the usage message. It follows argument errors on
// stderr; there is no help flag because mdBook's protocol reserves every
// other argument for an exit status of 1.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdbook-compile-output [flags]")
	fmt.Fprintln(w, "       mdbook-compile-output supports <renderer>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "mdBook preprocessor that replaces {{#compile_output: <step>}} lines")
	fmt.Fprintln(w, "with the output of the step's build command. Reads [context, book]")
	fmt.Fprintln(w, "JSON on stdin and writes the book JSON to stdout.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <path>   YAML config file")
	fmt.Fprintln(w, "  -v, --verbose         Log every step to stderr")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "book.toml:")
	fmt.Fprintln(w, "  [preprocessor.compile-output]")
	fmt.Fprintln(w, "  base-dir = \"rust_stages\"          # step directories")
	fmt.Fprintln(w, "  step-command = \"cargo\"")
	fmt.Fprintln(w, "  step-args = [\"test\", \"--release\"]")
	fmt.Fprintln(w, "  timeout = \"5m\"                     # default: none")
	fmt.Fprintln(w, "  on-spawn-error = \"abort\"           # or \"inline\"")
	fmt.Fprintln(w, "  log-level = \"warn\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MDBOOK_COMPILE_OUTPUT_CONFIG, _BASE_DIR, _STEP_COMMAND, _STEP_ARGS,")
	fmt.Fprintln(w, "  _TIMEOUT, _ON_SPAWN_ERROR, _LOG_LEVEL override book.toml.")
}
