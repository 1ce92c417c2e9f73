package main

import (
	"bytes"
	"strings"
	"testing"

	materialdomain "github.com/smallbiznis/stockroom/internal/material/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMaterials(t *testing.T) {
	var buf bytes.Buffer
	err := renderMaterials(&buf, []materialdomain.Material{
		{ID: 1, Code: "200001", Description: "Saline 10ml"},
		{ID: 12, Code: "200417", Description: "Gauze 4x4"},
	})
	require.NoError(t, err)

	out := buf.String()
	for _, want := range []string{"ID", "CODE", "DESCRIPTION", "200001", "Saline 10ml", "200417", "Gauze 4x4"} {
		assert.Contains(t, out, want)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// top border, header, separator, two rows, bottom border
	assert.Len(t, lines, 6)
	assert.Less(t, strings.Index(out, "Saline 10ml"), strings.Index(out, "Gauze 4x4"))
}

func TestRenderMaterialsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderMaterials(&buf, nil))
	assert.Equal(t, "no catalog items\n", buf.String())
}
