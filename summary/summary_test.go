package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `# Calculus overview

You explored **limits**, derivatives and integrals.

## Derivative

Rate of change. <script>alert("x")</script>

- chain rule
- [product rule](https://example.com/product)

### Notes

#### Too deep for the outline
`

func TestRender(t *testing.T) {
	doc, err := Render(sample)
	require.NoError(t, err)

	assert.Contains(t, doc.HTML, "<strong>limits</strong>")
	assert.NotContains(t, doc.HTML, "<script")
	assert.NotContains(t, doc.HTML, "alert(")
	assert.Contains(t, doc.HTML, `href="https://example.com/product"`)

	require.Len(t, doc.Outline, 3)
	assert.Equal(t, Heading{Level: 1, ID: "calculus-overview", Text: "Calculus overview"}, doc.Outline[0])
	assert.Equal(t, 2, doc.Outline[1].Level)
	assert.Equal(t, "Derivative", doc.Outline[1].Text)
	assert.Equal(t, 3, doc.Outline[2].Level)
	assert.Equal(t, "Notes", doc.Outline[2].Text)

	assert.Contains(t, doc.Text, "Calculus overview\n")
	assert.Contains(t, doc.Text, "chain rule\nproduct rule")
	assert.NotContains(t, doc.Text, "alert")
}

func TestRender_Chinese(t *testing.T) {
	doc, err := Render("## 核心概念\n\n导数描述变化率。")
	require.NoError(t, err)
	require.Len(t, doc.Outline, 1)
	assert.Equal(t, "核心概念", doc.Outline[0].Text)
	assert.Equal(t, "核心概念\n导数描述变化率。", doc.Text)
}

func TestRender_Empty(t *testing.T) {
	_, err := Render(" \n ")
	assert.ErrorIs(t, err, ErrEmpty)
}
