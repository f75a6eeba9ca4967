package compileoutput

import (
	"context"
	"strings"
)

// Fence delimiters around inlined step output.
const (
	fenceOpen  = "```text\n"
	fenceClose = "\n```"
)

// RenderFence wraps step output in a fenced code block labeled "text".
func RenderFence(output string) string {
	return fenceOpen + output + fenceClose
}

// Rewrite replaces every marker line in content with the fenced output of
// its step and copies all other lines unchanged. Each output line, including
// the last, ends with a single "\n". Steps run in line order.
func Rewrite(ctx context.Context, content string, compiler Compiler) (string, error) {
	var b strings.Builder
	b.Grow(len(content))

	for _, line := range splitLines(content) {
		if step, ok := ExtractStepName(line); ok {
			output, err := compiler.Compile(ctx, step)
			if err != nil {
				return "", err
			}
			b.WriteString(RenderFence(output))
		} else {
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}

	return b.String(), nil
}

// splitLines splits on "\n", dropping a "\r" before each terminator.
// A trailing terminator does not start an extra empty line.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}

	lines := strings.Split(content, "\n")
	terminated := len(lines) - 1
	if strings.HasSuffix(content, "\n") {
		lines = lines[:terminated]
	}

	for i := 0; i < terminated; i++ {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}

	return lines
}
