package main

import (
	"fmt"
	"log"

	"labvista/internal/analyzer"
	_ "labvista/internal/analyzer/claude"
	_ "labvista/internal/analyzer/ollama"
	"labvista/internal/config"
	"labvista/internal/formatter"
	"labvista/internal/handler"
	"labvista/internal/pdftext"
	"labvista/internal/port"
	"labvista/internal/repository/postgres"
	"labvista/internal/router"
	"labvista/internal/service"
	s3storage "labvista/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	reportRepo := postgres.NewReportRepo(db)
	resultRepo := postgres.NewResultRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize analyzers with provider fallback
	llm, err := buildAnalyzer(&cfg.Analyzer)
	if err != nil {
		return fmt.Errorf("failed to initialize analyzers: %w", err)
	}

	// Initialize services
	reportSvc := service.NewReportService(
		reportRepo, resultRepo, s3Client, llm, pdftext.New(),
		formatter.New(), &cfg.S3, &cfg.Repair,
	)

	// Initialize handlers
	reportH := handler.NewReportHandler(reportSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(&cfg.CORS, reportH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func buildAnalyzer(cfg *config.AnalyzerConfig) (port.ReportAnalyzer, error) {
	primary, err := analyzer.NewAnalyzer(&cfg.Primary)
	if err != nil {
		return nil, fmt.Errorf("primary analyzer: %w", err)
	}

	analyzers := []port.ReportAnalyzer{primary}
	names := []string{cfg.Primary.Provider}

	if secondaryCfg := cfg.SecondaryConfig(); secondaryCfg != nil {
		secondary, err := analyzer.NewAnalyzer(secondaryCfg)
		if err != nil {
			return nil, fmt.Errorf("secondary analyzer: %w", err)
		}
		analyzers = append(analyzers, secondary)
		names = append(names, secondaryCfg.Provider)
	}

	return analyzer.NewFallbackAnalyzer(analyzers, names), nil
}
