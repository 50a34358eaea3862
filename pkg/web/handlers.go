package web

import (
	"html/template"
	"log/slog"
	"net/http"
	"path"

	"github.com/dskvich/snarky-facts/pkg/domain"
	"github.com/dskvich/snarky-facts/pkg/render"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

const (
	pageTitle = "Snarky Facts Generator"
	pageIntro = "Get AI-generated trivia with **attitude** and matching visuals!"
)

var introHTML = template.HTML(render.ToHTML(pageIntro))

type downloadLink struct {
	Label    string       `json:"label"`
	FileName string       `json:"file_name"`
	Href     template.URL `json:"href"`
}

type pageData struct {
	Title        string
	Intro        template.HTML
	GeneratePath string
	WSPath       string
	Card         template.HTML
	Downloads    []downloadLink
	Error        string
}

func newPageData(subpath string) pageData {
	return pageData{
		Title:        pageTitle,
		Intro:        introHTML,
		GeneratePath: path.Join(subpath, "generate"),
		WSPath:       path.Join(subpath, "ws", "generate"),
	}
}

func downloadLinks(card *domain.Card) []downloadLink {
	return lo.Map(card.Downloads, func(d domain.Download, _ int) downloadLink {
		return downloadLink{
			Label:    d.Label,
			FileName: d.FileName,
			Href:     template.URL(d.DataURI()),
		}
	})
}

// GET /health
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// GET /
func indexHandler(subpath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", newPageData(subpath))
	}
}

// POST /generate runs a whole cycle before answering, for clients without websockets.
func generateHandler(subpath string, generator cardGenerator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		data := newPageData(subpath)

		card, err := generator.Run(ctx, func(s domain.State) {
			slog.InfoContext(ctx, "cycle state changed", "state", s)
		})
		if err != nil {
			data.Error = err.Error()
			c.HTML(http.StatusBadGateway, "index.html", data)
			return
		}

		data.Card = template.HTML(card.Markup)
		data.Downloads = downloadLinks(card)
		c.HTML(http.StatusOK, "index.html", data)
	}
}
