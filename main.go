package main

import (
	"github.com/gin-gonic/gin"

	"github.com/paisatrack/statement-engine/client"
	"github.com/paisatrack/statement-engine/config"
	"github.com/paisatrack/statement-engine/handler"
	"github.com/paisatrack/statement-engine/logger"
	"github.com/paisatrack/statement-engine/service"
)

func main() {
	log := logger.New()

	// Initialize configuration
	cfg := config.LoadConfig()
	log.Info().Str("tessdata", cfg.TesseractDataPath).Msg("configuration loaded")

	// Initialize Tesseract client
	tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath, cfg.OCRLanguage)
	recognizer := service.NewTesseractRecognizer(tesseractClient)

	// Initialize PDF processor
	pdfProcessor := service.NewPDFProcessor()

	// Initialize service layer
	statementService := service.NewStatementService(cfg, recognizer, pdfProcessor, log)

	// Initialize handler layer
	statementHandler := handler.NewStatementHandler(statementService, cfg.MaxFileSize, log)

	// Setup Gin router
	router := gin.Default()
	router.MaxMultipartMemory = cfg.MaxFileSize

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Statement Extraction Engine",
		})
	})

	// API routes
	api := router.Group("/api/v1")
	{
		statements := api.Group("/statements")
		{
			statements.POST("/parse", statementHandler.ParseStatement)
		}
	}

	// Start server
	log.Info().Str("port", cfg.ServerPort).Msg("starting statement extraction service")
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
