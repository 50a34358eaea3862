package domain

import "encoding/base64"

const (
	ImageFileName = "trivia_card.png"
	ImageMimeType = "image/png"
	TextFileName  = "trivia_quote.txt"
	TextMimeType  = "text/plain"
)

const GenerateCallbackData = "gen_trivia"

// Card is the result of one successful cycle.
type Card struct {
	Trivia    string
	Image     []byte
	Markup    string
	Downloads []Download
}

type Download struct {
	Label    string
	FileName string
	MimeType string
	Data     []byte
}

// DataURI inlines the download so the page needs no server-side state.
func (d Download) DataURI() string {
	return "data:" + d.MimeType + ";base64," + base64.StdEncoding.EncodeToString(d.Data)
}
