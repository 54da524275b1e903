package container

import (
	"fmt"
	"net/http"

	"github.com/sunflower-vision/report-export-go/internal/cdn"
	"github.com/sunflower-vision/report-export-go/internal/config"
	"github.com/sunflower-vision/report-export-go/internal/export"
	"github.com/sunflower-vision/report-export-go/internal/factory"
	"github.com/sunflower-vision/report-export-go/internal/history"
	"github.com/sunflower-vision/report-export-go/internal/report"
	"github.com/sunflower-vision/report-export-go/internal/service"
	"github.com/sunflower-vision/report-export-go/internal/storage"
	"github.com/sunflower-vision/report-export-go/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config        *config.Config
	historyClient *history.Client
	resolver      *cdn.Resolver
	loader        storage.ImageLoader
	saver         storage.FileSaver
	reportService service.ReportService
	orchestrator  *export.Orchestrator
	handler       http.Handler
}

// NewContainer builds the full dependency graph from configuration.
func NewContainer(cfg *config.Config) (*Container, error) {
	historyClient := history.NewClient(cfg.HistoryBaseURL, cfg.HistoryTimeout)
	if cfg.HistoryToken != "" {
		historyClient.SetCredential(cfg.HistoryToken)
	}

	resolver := cdn.NewResolver(cfg.CDNHost)
	loader := storage.NewHTTPImageLoader(cfg.ImageFetchTimeout)

	saver, err := factory.NewSaverFactory().CreateSaver(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact saver: %w", err)
	}

	composer := report.NewPDFComposer()
	reportService := service.NewReportService(resolver, loader, composer)

	notifier := export.NewNotifier()
	notifier.Subscribe(export.LogObserver{})
	orchestrator := export.NewOrchestrator(reportService, saver, notifier, cfg.ExportWorkers)

	handler := transport.NewHandler(historyClient, orchestrator, resolver, cfg)

	return &Container{
		config:        cfg,
		historyClient: historyClient,
		resolver:      resolver,
		loader:        loader,
		saver:         saver,
		reportService: reportService,
		orchestrator:  orchestrator,
		handler:       handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases background resources (the export worker pool).
func (c *Container) Close() {
	c.orchestrator.Close()
}
