// Package trivia runs one generation cycle: trivia text, then a background
// image derived from it, then the composed card. Steps run strictly in order
// and the first failure ends the cycle.
package trivia

import (
	"context"
	"log/slog"
	"time"

	"github.com/dskvich/snarky-facts/pkg/domain"
	"github.com/dskvich/snarky-facts/pkg/logger"
	"github.com/dskvich/snarky-facts/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/dskvich/snarky-facts/pkg/trivia")

type triviaProvider interface {
	GenerateTrivia(ctx context.Context) (string, error)
}

type imageProvider interface {
	GenerateImage(ctx context.Context, prompt string, model string) ([]byte, error)
}

type cardComposer interface {
	Compose(trivia string, imageBytes []byte) (*domain.Card, error)
}

type Generator struct {
	trivia     triviaProvider
	images     imageProvider
	composer   cardComposer
	imageModel string
	metrics    *metrics.Metrics
}

func NewGenerator(
	triviaProvider triviaProvider,
	imageProvider imageProvider,
	composer cardComposer,
	imageModel string,
	m *metrics.Metrics,
) *Generator {
	return &Generator{
		trivia:     triviaProvider,
		images:     imageProvider,
		composer:   composer,
		imageModel: imageModel,
		metrics:    m,
	}
}

// Run executes one cycle. onState, when non-nil, sees every transition:
// AwaitingTrivia, AwaitingImage, then Rendered on success or Idle on failure.
// Any returned error is a *domain.StageError.
func (g *Generator) Run(ctx context.Context, onState func(domain.State)) (*domain.Card, error) {
	ctx, span := tracer.Start(ctx, "trivia.cycle")
	defer span.End()

	notify := func(s domain.State) {
		if onState != nil {
			onState(s)
		}
	}

	fail := func(stage domain.State, err error) (*domain.Card, error) {
		stageErr := &domain.StageError{Stage: stage, Err: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, stageErr.Error())
		slog.ErrorContext(ctx, "cycle aborted", "stage", stage, logger.Err(err))
		g.metrics.CycleFinished(metrics.OutcomeFailed)
		notify(domain.StateIdle)
		return nil, stageErr
	}

	notify(domain.StateAwaitingTrivia)
	text, err := g.requestTrivia(ctx)
	if err != nil {
		return fail(domain.StateAwaitingTrivia, err)
	}
	slog.InfoContext(ctx, "trivia generated", "trivia", text)

	notify(domain.StateAwaitingImage)
	imageData, err := g.requestImage(ctx, text)
	if err != nil {
		return fail(domain.StateAwaitingImage, err)
	}
	slog.InfoContext(ctx, "image generated", "size", len(imageData), "model", g.imageModel)

	card, err := g.composer.Compose(text, imageData)
	if err != nil {
		return fail(domain.StateRendered, err)
	}

	g.metrics.CycleFinished(metrics.OutcomeRendered)
	notify(domain.StateRendered)

	return card, nil
}

func (g *Generator) requestTrivia(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "trivia.generate_text")
	defer span.End()

	start := time.Now()
	text, err := g.trivia.GenerateTrivia(ctx)
	g.metrics.ObserveStage(string(domain.StateAwaitingTrivia), time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	span.SetAttributes(attribute.Int("trivia.length", len(text)))
	return text, nil
}

func (g *Generator) requestImage(ctx context.Context, text string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "trivia.generate_image",
		trace.WithAttributes(attribute.String("image.model", g.imageModel)))
	defer span.End()

	start := time.Now()
	imageData, err := g.images.GenerateImage(ctx, domain.ImagePrompt(text), g.imageModel)
	g.metrics.ObserveStage(string(domain.StateAwaitingImage), time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("image.size", len(imageData)))
	return imageData, nil
}
