package main

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/leadmesh/leadgen/internal/gateway"
)

// labelWidth aligns transcript content across the kind labels.
const labelWidth = 9

// formatEntry renders one transcript entry for the terminal, with the kind
// label padded so multi-line content stays aligned.
func formatEntry(e gateway.Entry) string {
	label := runewidth.FillRight("["+string(e.Kind)+"]", labelWidth)
	indent := strings.Repeat(" ", labelWidth)

	lines := strings.Split(e.Content, "\n")
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s%s", label, lines[0])
	for _, line := range lines[1:] {
		fmt.Fprintf(&sb, "\n%s%s", indent, line)
	}
	return sb.String()
}
