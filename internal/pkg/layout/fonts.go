package layout

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/gofiber/fiber/v2/log"
	"github.com/jung-kurt/gofpdf"
)

// FontSet holds TrueType faces for one logical family, keyed by gofpdf style
// ("" regular, "B" bold, "I" italic).
type FontSet struct {
	Family string
	faces  map[string][]byte
}

// FontLibrary maps logical family names to loaded font sets.
type FontLibrary struct {
	sets map[string]*FontSet
}

var faceStyles = []string{"", "B", "I"}

var faceFiles = map[string]string{
	"":  "-Regular.ttf",
	"B": "-Bold.ttf",
	"I": "-Italic.ttf",
}

// LoadFontLibrary reads <dir>/<family>-Regular.ttf (plus optional Bold and
// Italic faces) for every family. Every face is test-loaded into a scratch
// document; unreadable faces are dropped. Families without a usable regular
// face are skipped and their templates use the built-in Helvetica.
func LoadFontLibrary(dir string, families ...string) *FontLibrary {
	lib := &FontLibrary{sets: make(map[string]*FontSet)}
	if dir == "" {
		return lib
	}
	for _, family := range families {
		set := &FontSet{Family: family, faces: make(map[string][]byte)}
		for style, suffix := range faceFiles {
			data, err := os.ReadFile(filepath.Join(dir, family+suffix))
			if err != nil {
				continue
			}
			if !validFace(data) {
				log.Warnf("[Fonts] %s%s is not a usable TrueType font, ignoring it", family, suffix)
				continue
			}
			set.faces[style] = data
		}
		if _, ok := set.faces[""]; !ok {
			log.Warnf("[Fonts] %s not found in %s, falling back to Helvetica", family, dir)
			continue
		}
		lib.sets[family] = set
		log.Infof("[Fonts] loaded %s (%d faces)", family, len(set.faces))
	}
	return lib
}

// Lookup returns the font set registered under family.
func (l *FontLibrary) Lookup(family string) (*FontSet, bool) {
	if l == nil || family == "" {
		return nil, false
	}
	set, ok := l.sets[family]
	return set, ok
}

// Families lists the loaded family names in sorted order.
func (l *FontLibrary) Families() []string {
	if l == nil {
		return nil
	}
	names := make([]string, 0, len(l.sets))
	for name := range l.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// face returns the bytes for style, falling back to the regular face.
func (s *FontSet) face(style string) []byte {
	if data, ok := s.faces[style]; ok {
		return data
	}
	return s.faces[""]
}

// addFace registers a UTF-8 face on pdf and reports whether gofpdf accepted
// it. gofpdf does not flag unparsable font bytes as an error, so the face is
// looked up afterwards.
func addFace(pdf *gofpdf.Fpdf, family, style string, data []byte) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	pdf.AddUTF8FontFromBytes(family, style, data)
	return pdf.Error() == nil && pdf.GetFontDesc(family, style).Ascent != 0
}

func validFace(data []byte) bool {
	return addFace(gofpdf.New("P", "pt", "A4", ""), "face", "", data)
}
