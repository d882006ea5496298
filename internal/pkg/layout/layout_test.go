package layout

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issued = time.Date(2026, time.March, 5, 10, 0, 0, 0, time.UTC)

func newTestDocument() *Document {
	return NewDocument(Config{
		Style:    Style{Primary: Hex("#003d7a"), Secondary: Hex("#0066cc"), Header: HeaderModern},
		IssuedAt: issued,
	})
}

func TestDates(t *testing.T) {
	assert.Equal(t, "05/03/2026", ShortDate(issued))
	assert.Equal(t, "5 de março de 2026", LongDate(issued))
	assert.Equal(t, "31 de dezembro de 1999", LongDate(time.Date(1999, time.December, 31, 0, 0, 0, 0, time.UTC)))
}

func TestHex(t *testing.T) {
	assert.Equal(t, Color{0, 61, 122}, Hex("#003d7a"))
	assert.Equal(t, Color{212, 175, 55}, Hex("d4af37"))
	assert.Equal(t, Color{}, Hex("#xyz"))
	assert.Equal(t, Color{}, Hex(""))
	assert.Equal(t, white, Color{0, 0, 0}.Tint(1))
	assert.Equal(t, Color{10, 20, 30}, Color{10, 20, 30}.Tint(0))
}

func TestValues(t *testing.T) {
	v := Values{"nome": "  Maria  ", "vazio": "   "}

	assert.Equal(t, "Maria", v.Get("nome"))
	assert.Equal(t, Placeholder, v.Get("vazio"))
	assert.Equal(t, Placeholder, v.Get("ausente"))
	assert.Equal(t, "São Paulo", v.Or("ausente", "São Paulo"))
	assert.True(t, v.Has("nome"))
	assert.False(t, v.Has("vazio"))

	c := v.Clone()
	c["nome"] = "João"
	assert.Equal(t, "  Maria  ", v["nome"])
}

func TestParagraphFlowsAcrossPages(t *testing.T) {
	d := newTestDocument()
	d.Header("TESTE", "subtítulo")
	d.Paragraph(strings.Repeat("Texto corrido para ocupar várias linhas do documento. ", 600))

	assert.Greater(t, d.PageCount(), 2)
	assert.LessOrEqual(t, d.Y(), d.bottom())

	out, err := d.Bytes()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestSignatureBlockBreaksPageWhenShort(t *testing.T) {
	d := newTestDocument()
	d.pdf.SetY(d.bottom() - SignatureMinHeight + 20)
	require.Less(t, d.Remaining(), SignatureMinHeight)

	d.SignatureBlock("Campinas", Signatory{Role: "CONTRATANTE", Name: "A"}, Signatory{Role: "CONTRATADO", Name: "B"})

	assert.Equal(t, 2, d.PageCount())
}

func TestSignatureBlockStaysWhenRoomLeft(t *testing.T) {
	d := newTestDocument()
	d.Header("TESTE", "")
	d.SignatureBlock("Campinas", Signatory{Role: "CONTRATANTE"})

	assert.Equal(t, 1, d.PageCount())
	assert.InDelta(t, d.bottom()-SignatureMinHeight+110, d.Y(), 0.01)
}

func TestContractLayoutWritesPlaceholder(t *testing.T) {
	d := NewDocument(Config{Style: Style{Primary: Hex("#2c3e50"), Header: HeaderClean}, IssuedAt: issued})
	Contract(DefaultContractWording)(d, Values{"contratante": "Empresa X"})

	out, err := d.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(out), "informado]")
	assert.Contains(t, string(out), "Empresa X")
	assert.Equal(t, 1, d.PageCount())
}

func TestProposalLayoutFormalHeader(t *testing.T) {
	d := NewDocument(Config{Style: Style{Primary: Hex("#27ae60"), Header: HeaderFormal}, IssuedAt: issued})
	Proposal(DefaultProposalWording)(d, Values{"proponente": "Agência Y", "servicos": "Consultoria"})

	out, err := d.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(out), "Consultoria")
}

func TestFontLibraryMissingDirectory(t *testing.T) {
	lib := LoadFontLibrary(t.TempDir(), "Roboto")
	_, ok := lib.Lookup("Roboto")
	assert.False(t, ok)
	assert.Empty(t, lib.Families())

	var nilLib *FontLibrary
	_, ok = nilLib.Lookup("Roboto")
	assert.False(t, ok)
}

func copyFont(t *testing.T, dir, name string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "fonts", "DejaVuSansCondensed.ttf"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func TestFontLibraryLoadsTrueTypeFaces(t *testing.T) {
	dir := t.TempDir()
	copyFont(t, dir, "DejaVu-Regular.ttf")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "DejaVu-Bold.ttf"), []byte("not a font"), 0o644))

	lib := LoadFontLibrary(dir, "DejaVu")
	set, ok := lib.Lookup("DejaVu")
	require.True(t, ok)
	assert.Equal(t, []string{"DejaVu"}, lib.Families())
	assert.Contains(t, set.faces, "")
	assert.NotContains(t, set.faces, "B")

	d := NewDocument(Config{
		Style:    Style{Primary: Hex("#003d7a"), Header: HeaderModern, FontFamily: "DejaVu"},
		Fonts:    lib,
		IssuedAt: issued,
	})
	assert.Equal(t, "DejaVu", d.family)
	d.Header("Contrato de Prestação de Serviços", "")
	d.Paragraph("Cláusula primeira: o objeto deste contrato é a assessoria jurídica.")

	out, err := d.Bytes()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestFontLibrarySkipsCorruptRegularFace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Roboto-Regular.ttf"), []byte("garbage bytes, no tables"), 0o644))

	lib := LoadFontLibrary(dir, "Roboto")
	_, ok := lib.Lookup("Roboto")
	assert.False(t, ok)

	d := NewDocument(Config{
		Style:    Style{Primary: Hex("#003d7a"), Header: HeaderModern, FontFamily: "Roboto"},
		Fonts:    lib,
		IssuedAt: issued,
	})
	assert.Equal(t, "Helvetica", d.family)
	d.Paragraph("Texto com acentuação.")
	_, err := d.Bytes()
	assert.NoError(t, err)
}

func TestNewDocumentFallsBackWhenFaceCannotBeRegistered(t *testing.T) {
	lib := &FontLibrary{sets: map[string]*FontSet{
		"Roboto": {Family: "Roboto", faces: map[string][]byte{"": []byte("garbage")}},
	}}

	d := NewDocument(Config{
		Style:    Style{Primary: Hex("#003d7a"), Header: HeaderModern, FontFamily: "Roboto"},
		Fonts:    lib,
		IssuedAt: issued,
	})
	assert.Equal(t, "Helvetica", d.family)
	d.Header("Contrato", "")
	d.Paragraph("Cláusula única.")

	out, err := d.Bytes()
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
