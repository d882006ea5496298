package upload

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxDocumentSize is the upload limit for documents sent to analysis.
const MaxDocumentSize = 10 << 20

type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
	KindTXT  Kind = "txt"
)

var (
	ErrEmptyFile       = errors.New("arquivo vazio")
	ErrFileTooLarge    = errors.New("arquivo maior que 10MB")
	ErrUnsupportedType = errors.New("formato não suportado: envie PDF, DOCX ou TXT")
)

var allowedExt = map[string]Kind{
	".pdf":  KindPDF,
	".docx": KindDOCX,
	".txt":  KindTXT,
}

var allowedMime = map[string]Kind{
	"application/pdf": KindPDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": KindDOCX,
	"text/plain": KindTXT,
}

// ValidateDocument checks the filename extension and the sniffed content
// type of data against the accepted document formats. It returns the kind and
// the detected mime type.
func ValidateDocument(filename string, data []byte) (Kind, string, error) {
	if len(data) == 0 {
		return "", "", ErrEmptyFile
	}
	if len(data) > MaxDocumentSize {
		return "", "", ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	byExt, ok := allowedExt[ext]
	if !ok {
		return "", "", ErrUnsupportedType
	}

	detected := mimetype.Detect(data)
	for mime, kind := range allowedMime {
		if detected.Is(mime) {
			if kind != byExt {
				return "", "", ErrUnsupportedType
			}
			return kind, mime, nil
		}
	}

	// Word files without the usual member order are only recognised as zip.
	if byExt == KindDOCX && detected.Is("application/zip") {
		return KindDOCX, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", nil
	}
	return "", "", ErrUnsupportedType
}
