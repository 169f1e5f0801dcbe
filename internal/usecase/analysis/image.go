package analysis

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"agrisense/internal/domain/entity"
	"agrisense/internal/infra/analyzer"
)

// DefaultMaxImageBytes is the largest accepted image when none is configured.
const DefaultMaxImageBytes = 8 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
}

// DecodeDataURL decodes "data:<mime>;base64,<payload>". The string is split
// on the first comma. A bare base64 payload is treated as image/jpeg.
func DecodeDataURL(s string) (analyzer.Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return analyzer.Image{}, &entity.ValidationError{Field: "image", Message: "image is required"}
	}

	mime := "image/jpeg"
	payload := s
	if strings.HasPrefix(s, "data:") {
		header, data, ok := strings.Cut(s, ",")
		if !ok {
			return analyzer.Image{}, &entity.ValidationError{Field: "image", Message: "malformed data URL"}
		}
		meta := strings.TrimPrefix(header, "data:")
		if !strings.HasSuffix(meta, ";base64") {
			return analyzer.Image{}, &entity.ValidationError{Field: "image", Message: "data URL must be base64 encoded"}
		}
		if m := strings.TrimSuffix(meta, ";base64"); m != "" {
			mime = m
		}
		payload = data
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// some encoders drop padding
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return analyzer.Image{}, &entity.ValidationError{Field: "image", Message: "image is not valid base64"}
		}
	}
	return analyzer.Image{Data: data, MIMEType: normalizeMIME(mime)}, nil
}

// heifBrands are the ftyp major brands of HEIC/HEIF stills.
var heifBrands = [][]byte{
	[]byte("heic"), []byte("heix"), []byte("heim"), []byte("heis"),
	[]byte("hevc"), []byte("hevx"), []byte("mif1"), []byte("msf1"),
}

// DetectImageType sniffs the MIME type of data. net/http does not know
// HEIC, so its ftyp box is checked first; name's extension is the last
// resort.
func DetectImageType(data []byte, name string) string {
	if len(data) >= 12 && bytes.Equal(data[4:8], []byte("ftyp")) {
		for _, b := range heifBrands {
			if bytes.Equal(data[8:12], b) {
				return "image/heic"
			}
		}
	}
	if ct := http.DetectContentType(data); ct != "application/octet-stream" {
		return normalizeMIME(ct)
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".heic" || ext == ".heif" {
		return "image/heic"
	}
	if ct := mime.TypeByExtension(ext); ext != "" && ct != "" {
		return normalizeMIME(ct)
	}
	return "application/octet-stream"
}

func normalizeMIME(m string) string {
	m = strings.ToLower(strings.TrimSpace(m))
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = m[:i]
	}
	if m == "image/jpg" || m == "image/pjpeg" {
		return "image/jpeg"
	}
	return m
}

// ValidateImage checks size and MIME type.
func ValidateImage(img analyzer.Image, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	if len(img.Data) == 0 {
		return &entity.ValidationError{Field: "image", Message: "image is empty"}
	}
	if int64(len(img.Data)) > maxBytes {
		return &entity.ValidationError{
			Field:   "image",
			Message: fmt.Sprintf("image must not exceed %d bytes", maxBytes),
		}
	}
	if !allowedImageTypes[normalizeMIME(img.MIMEType)] {
		return &entity.ValidationError{
			Field:   "image",
			Message: "unsupported image type " + img.MIMEType + " (use jpeg, png, webp or heic)",
		}
	}
	return nil
}
