package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_PrintsSelectedGuidelines(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer

	err := run(context.Background(), &out, options{message: "¿Cuánto cuesta el alquiler?", turns: 1, top: 3, threshold: 30})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Turn 1")
	assert.Contains(t, out.String(), "Detected category: ventas")
}

func TestRun_FatigueAcrossTurns(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer

	err := run(context.Background(), &out, options{message: "hola", turns: 2, top: 1, threshold: 30, all: true})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Turn 2")
	assert.Contains(t, out.String(), "used 1 times")
	assert.Contains(t, out.String(), "All scores:")
}

func TestRun_RejectsZeroTurns(t *testing.T) {
	assert.Error(t, run(context.Background(), &bytes.Buffer{}, options{message: "hola"}))
}
