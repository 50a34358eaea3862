package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"path"

	"github.com/dskvich/snarky-facts/pkg/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed templates/*.html
var templatesFS embed.FS

type cardGenerator interface {
	Run(ctx context.Context, onState func(domain.State)) (*domain.Card, error)
}

type Config struct {
	// Subpath mounts every route under a prefix, e.g. "/facts". Empty means root.
	Subpath string
}

func SetupRouter(cfg Config, generator cardGenerator, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), Logger())

	r.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	subpath := path.Join("/", cfg.Subpath)
	group := r.Group(subpath)
	{
		group.GET("/", indexHandler(subpath))
		group.POST("/generate", generateHandler(subpath, generator))
		group.GET("/ws/generate", wsGenerateHandler(generator))
		group.GET("/health", healthHandler)
		group.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	if subpath != "/" {
		r.GET(subpath, func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, subpath+"/")
		})
	}

	return r
}
