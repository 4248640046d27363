package httpserver

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ServeOpenAPISpec serves the API description from docs/openapi.json.
func ServeOpenAPISpec() gin.HandlerFunc {
	return func(c *gin.Context) {
		specPath := filepath.Join(".", "docs", "openapi.json")

		data, err := os.ReadFile(specPath)
		if err != nil {
			log.Error().Err(err).Msg("Failed to read OpenAPI spec")
			c.JSON(500, gin.H{"error": "Failed to load API documentation"})
			return
		}

		var spec map[string]interface{}
		if err := json.Unmarshal(data, &spec); err != nil {
			log.Error().Err(err).Msg("Failed to parse OpenAPI spec")
			c.JSON(500, gin.H{"error": "Failed to parse API documentation"})
			return
		}

		c.JSON(200, spec)
	}
}
