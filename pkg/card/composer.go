// Package card turns a trivia statement and its background image into
// renderable markup plus the two downloadable artifacts.
package card

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/dskvich/snarky-facts/pkg/domain"
	_ "golang.org/x/image/webp"
)

const cardTemplate = `<div class="trivia-card" style="{{.Style}}">
    <blockquote style="font-size: 1.5rem; font-weight: 500; text-align: center; text-shadow: 2px 2px 4px rgba(0,0,0,0.5); max-width: 800px; margin: 0;">
        "{{.Trivia}}"
    </blockquote>
</div>`

const cardStyle = "background-image: linear-gradient(rgba(0,0,0,0.5), rgba(0,0,0,0.5)), url('%s'); " +
	"background-size: cover; background-position: center; padding: 2rem; border-radius: 15px; " +
	"color: white; margin: 2rem 0; min-height: 300px; display: flex; align-items: center; " +
	"justify-content: center; box-shadow: 0 10px 20px rgba(0,0,0,0.2);"

var tmpl = template.Must(template.New("card").Parse(cardTemplate))

type Composer struct{}

func NewComposer() *Composer {
	return &Composer{}
}

// Compose is deterministic: equal inputs always yield byte-identical markup.
func (c *Composer) Compose(trivia string, imageBytes []byte) (*domain.Card, error) {
	embedded, err := Reencode(imageBytes)
	if err != nil {
		return nil, err
	}

	dataURI := "data:" + domain.ImageMimeType + ";base64," + base64.StdEncoding.EncodeToString(embedded)

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, struct {
		Style  template.CSS
		Trivia string
	}{
		Style:  template.CSS(fmt.Sprintf(cardStyle, dataURI)),
		Trivia: trivia,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering card: %w", err)
	}

	return &domain.Card{
		Trivia: trivia,
		Image:  imageBytes,
		Markup: buf.String(),
		Downloads: []domain.Download{
			{Label: "Download Image", FileName: domain.ImageFileName, MimeType: domain.ImageMimeType, Data: imageBytes},
			{Label: "Download Text", FileName: domain.TextFileName, MimeType: domain.TextMimeType, Data: []byte(trivia)},
		},
	}, nil
}

// Reencode decodes any supported raster format and writes it back as PNG.
func Reencode(imageBytes []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding image: %w", domain.ErrMalformedResponse, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding %s image as png: %w", format, err)
	}

	return buf.Bytes(), nil
}
