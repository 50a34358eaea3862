package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v9"
	"github.com/dskvich/snarky-facts/pkg/card"
	"github.com/dskvich/snarky-facts/pkg/domain"
	"github.com/dskvich/snarky-facts/pkg/llm"
	"github.com/dskvich/snarky-facts/pkg/llm/huggingface"
	"github.com/dskvich/snarky-facts/pkg/llm/openai"
	"github.com/dskvich/snarky-facts/pkg/llm/replicate"
	"github.com/dskvich/snarky-facts/pkg/logger"
	"github.com/dskvich/snarky-facts/pkg/metrics"
	"github.com/dskvich/snarky-facts/pkg/services"
	"github.com/dskvich/snarky-facts/pkg/telegram/handlers"
	"github.com/dskvich/snarky-facts/pkg/telegram/middleware"
	"github.com/dskvich/snarky-facts/pkg/tracing"
	"github.com/dskvich/snarky-facts/pkg/trivia"
	"github.com/dskvich/snarky-facts/pkg/web"
	"github.com/go-telegram/bot"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const serviceName = "snarky-facts"

type Config struct {
	DeepSeekAPIKey    string  `env:"DEEPSEEK_API_KEY,required,notEmpty"`
	HuggingFaceAPIKey string  `env:"HUGGINGFACE_API_KEY,required,notEmpty"`
	ReplicateAPIToken string  `env:"REPLICATE_API_TOKEN"`
	TelegramBotToken  string  `env:"TELEGRAM_BOT_TOKEN"`
	TextAPIURL        string  `env:"TEXT_API_URL" envDefault:"https://api.deepseek.com/v1/chat/completions"`
	TextModel         string  `env:"TEXT_MODEL" envDefault:"deepseek-chat"`
	TextTemperature   float64 `env:"TEXT_TEMPERATURE" envDefault:"0.8"`
	ImageAPIURL       string  `env:"IMAGE_API_URL" envDefault:"https://api-inference.huggingface.co/models"`
	ImageModel        string  `env:"IMAGE_MODEL" envDefault:"stabilityai/stable-diffusion-xl-base-1.0"`
	HTTPAddr          string  `env:"HTTP_ADDR" envDefault:":8080"`
	HTTPSubpath       string  `env:"HTTP_SUBPATH"`
	OTLPEndpoint      string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

func (c Config) validate() error {
	var result *multierror.Error

	if c.TextTemperature < 0 || c.TextTemperature > 2 {
		result = multierror.Append(result, fmt.Errorf("TEXT_TEMPERATURE must be within [0, 2], got %v", c.TextTemperature))
	}
	if c.ImageModel == domain.FluxProUltra11 && c.ReplicateAPIToken == "" {
		result = multierror.Append(result, fmt.Errorf("IMAGE_MODEL %s requires REPLICATE_API_TOKEN", c.ImageModel))
	}
	if c.HTTPAddr == "" {
		result = multierror.Append(result, errors.New("HTTP_ADDR cannot be empty"))
	}

	return result.ErrorOrNil()
}

func loadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env file: %w", err)
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing env config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func main() {
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, logger.DefaultOptions)))

	if err := runMain(); err != nil {
		slog.Error("shutting down due to error", logger.Err(err))
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

func runMain() error {
	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	shutdownTracing, err := tracing.Init(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Warn("flushing traces", logger.Err(err))
		}
	}()

	svcGroup, err := setupServices(cfg)
	if err != nil {
		return err
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		select {
		case s := <-sigCh:
			slog.Info("shutting down due to signal", "signal", s.String())
			cancelFn()
		case <-ctx.Done():
		}
	}()

	return svcGroup.Start(ctx)
}

func setupImageClient(cfg Config) (*llm.MultiProviderImageClient, error) {
	hfClient, err := huggingface.NewClient(cfg.HuggingFaceAPIKey, huggingface.WithBaseURL(cfg.ImageAPIURL))
	if err != nil {
		return nil, fmt.Errorf("creating hugging face client: %w", err)
	}

	providers := map[string]llm.ImageGenerator{
		domain.SDXLBase10Model: hfClient,
	}

	if cfg.ReplicateAPIToken != "" {
		replicateClient, err := replicate.NewClient(cfg.ReplicateAPIToken)
		if err != nil {
			return nil, fmt.Errorf("creating replicate client: %w", err)
		}
		providers[domain.FluxProUltra11] = replicateClient
	}

	// Any other model id is assumed to be hosted on the inference API.
	if _, ok := providers[cfg.ImageModel]; !ok {
		providers[cfg.ImageModel] = hfClient
	}

	return llm.NewMultiProviderImageClient(providers), nil
}

func setupGenerator(cfg Config, reg prometheus.Registerer) (*trivia.Generator, error) {
	textClient, err := openai.NewClient(cfg.DeepSeekAPIKey,
		openai.WithURL(cfg.TextAPIURL),
		openai.WithModel(cfg.TextModel),
		openai.WithTemperature(cfg.TextTemperature),
	)
	if err != nil {
		return nil, fmt.Errorf("creating text client: %w", err)
	}

	imageClient, err := setupImageClient(cfg)
	if err != nil {
		return nil, err
	}

	slog.Info("image models available", "models", imageClient.Models(), "selected", cfg.ImageModel)

	return trivia.NewGenerator(textClient, imageClient, card.NewComposer(), cfg.ImageModel, metrics.New(reg)), nil
}

func setupServices(cfg Config) (services.Group, error) {
	var svc services.Service
	var svcGroup services.Group

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	generator, err := setupGenerator(cfg, reg)
	if err != nil {
		return nil, err
	}

	router := web.SetupRouter(web.Config{Subpath: cfg.HTTPSubpath}, generator, reg)

	if svc, err = services.NewHTTPServer(cfg.HTTPAddr, router); err == nil {
		svcGroup = append(svcGroup, svc)
	} else {
		return nil, err
	}

	if cfg.TelegramBotToken == "" {
		slog.Info("telegram front end disabled, TELEGRAM_BOT_TOKEN not set")
		return svcGroup, nil
	}

	opts := []bot.Option{
		bot.WithMiddlewares(middleware.RequestID),
		bot.WithDefaultHandler(handlers.Start()),
		bot.WithMessageTextHandler("/trivia", bot.MatchTypePrefix, handlers.GenerateTrivia(generator)),
		bot.WithCallbackQueryDataHandler(domain.GenerateCallbackData, bot.MatchTypeExact, handlers.GenerateTrivia(generator)),
	}

	b, err := bot.New(cfg.TelegramBotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}

	if svc, err = services.NewTelegramBot(b); err == nil {
		svcGroup = append(svcGroup, svc)
	} else {
		return nil, err
	}

	return svcGroup, nil
}
