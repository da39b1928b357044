package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leadmesh/leadgen/internal/gateway"
)

func TestFormatEntrySingleLine(t *testing.T) {
	got := formatEntry(gateway.Entry{Content: "Searching for businesses.", Kind: gateway.KindStatus})
	assert.Equal(t, "[status] Searching for businesses.", got)
}

func TestFormatEntryMultiLineAligned(t *testing.T) {
	got := formatEntry(gateway.Entry{Content: "line one\nline two", Kind: gateway.KindFinal})
	assert.Equal(t, "[final]  line one\n         line two", got)
}

func TestFormatEntryErrorKind(t *testing.T) {
	got := formatEntry(gateway.Entry{Content: "agent unavailable", Kind: gateway.KindError})
	assert.Equal(t, "[error]  agent unavailable", got)
}
