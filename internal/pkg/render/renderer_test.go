package render

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexforge/lexforge/internal/pkg/catalog"
	"github.com/lexforge/lexforge/internal/pkg/layout"
)

var fixedDate = time.Date(2026, time.October, 17, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedDate }

func contractValues() layout.Values {
	return layout.Values{
		"contratante":     "Maria Souza",
		"contratante_doc": "123.456.789-00",
		"contratado":      "Escritório Silva",
		"contratado_doc":  "11.111.111/0001-11",
		"objeto":          "Assessoria jurídica mensal.",
		"valor":           "R$ 2.000,00",
		"forma_pagamento": "Pix",
		"prazo":           "12 meses",
		"foro":            "Campinas",
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	r := New(catalog.Default(), WithClock(fixedClock))

	for _, d := range r.Registry().List() {
		t.Run(d.ID, func(t *testing.T) {
			first, err := r.Render(d.ID, contractValues())
			require.NoError(t, err)
			second, err := r.Render(d.ID, contractValues())
			require.NoError(t, err)

			assert.True(t, bytes.HasPrefix(first, []byte("%PDF-")))
			assert.Equal(t, first, second)
		})
	}
}

func TestRenderAtDiffersByDate(t *testing.T) {
	r := New(catalog.Default())

	a, err := r.RenderAt("contrato-simples", contractValues(), fixedDate)
	require.NoError(t, err)
	b, err := r.RenderAt("contrato-simples", contractValues(), fixedDate.AddDate(0, 1, 0))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestRenderSubstitutesPlaceholderForOptionalField(t *testing.T) {
	r := New(catalog.Default(), WithClock(fixedClock), WithCompression(false))

	values := contractValues()
	delete(values, "contratado_endereco")

	out, err := r.Render("contrato-moderno", values)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Endere")
	assert.Contains(t, string(out), "informado]")
	assert.Contains(t, string(out), "Maria Souza")
}

func TestRenderUnknownTemplate(t *testing.T) {
	r := New(catalog.Default())

	_, err := r.Render("does-not-exist", layout.Values{})

	var re *Error
	require.True(t, errors.As(err, &re))
	assert.Equal(t, UnknownTemplate, re.Kind)
	assert.ErrorIs(t, err, catalog.ErrTemplateNotFound)
	assert.True(t, IsKind(err, UnknownTemplate))
}

func TestRenderRecoversLayoutPanic(t *testing.T) {
	registry, err := catalog.NewRegistry(catalog.Definition{
		ID:       "quebrado",
		Category: catalog.CategoryOther,
		Layout: func(*layout.Document, layout.Values) {
			panic("index out of range")
		},
	})
	require.NoError(t, err)

	out, err := New(registry).Render("quebrado", layout.Values{})

	assert.Nil(t, out)
	assert.True(t, IsKind(err, LayoutFailure))
	assert.Contains(t, err.Error(), "index out of range")
}

func TestRenderDoesNotMutateValues(t *testing.T) {
	values := contractValues()
	registry, err := catalog.NewRegistry(catalog.Definition{
		ID:       "mutante",
		Category: catalog.CategoryOther,
		Layout: func(_ *layout.Document, v layout.Values) {
			v["contratante"] = "outro"
		},
	})
	require.NoError(t, err)

	_, err = New(registry).Render("mutante", values)
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", values["contratante"])
}

func TestRenderWithFontDirectory(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "layout", "testdata", "fonts", "DejaVuSansCondensed.ttf"))
	require.NoError(t, err)

	good := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(good, "Roboto-Regular.ttf"), data, 0o644))
	broken := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(broken, "Roboto-Regular.ttf"), []byte("definitely not a font"), 0o644))

	for name, dir := range map[string]string{"valid font": good, "corrupt font": broken} {
		t.Run(name, func(t *testing.T) {
			fonts := layout.LoadFontLibrary(dir, "Roboto")
			r := New(catalog.Default(), WithClock(fixedClock), WithFonts(fonts))

			out, err := r.Render("contrato-moderno", contractValues())
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
		})
	}
}
