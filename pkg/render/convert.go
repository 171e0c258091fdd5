package render

import (
	"bytes"
	"os/exec"

	"github.com/takumik/keizu/pkg/errors"
)

// ToPDF converts SVG bytes to PDF using rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
//
// rsvg-convert resolves the font family named in the SVG against the host
// fontconfig database and embeds the glyphs into the PDF. When the family
// is absent it substitutes a default without erroring, which is where
// missing CJK fonts finally become visible as boxes in the output.
func ToPDF(svg []byte) ([]byte, error) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, errors.New(errors.ErrCodeConverterMissing,
			"PDF export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin")
	}

	cmd := exec.Command("rsvg-convert", "-f", "pdf")
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err,
			"rsvg-convert: %s", errBuf.String())
	}
	return out.Bytes(), nil
}
