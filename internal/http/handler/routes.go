package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docflow/internal/config"
	"docflow/internal/http/middleware"
	"docflow/internal/service"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Dependencies are the collaborators the HTTP routes delegate to.
type Dependencies struct {
	DB         Pinger
	Documents  service.DocumentService
	Uploads    service.UploadService
	Validation service.ValidationService
	Downloads  service.DownloadService
	Security   config.SecurityConfig
	// Metrics is served on /metrics when set.
	Metrics prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin: parse input, call one service method, map the result.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	app.Get("/health", HealthCheck(deps.DB))
	// Backward-compatible simple liveness probe
	app.Get("/healthz", LivenessProbe())
	if deps.Metrics != nil {
		app.Get("/metrics", Metrics(deps.Metrics))
	}

	api := app.Group("/api", middleware.Actor(deps.Security))

	api.Post("/upload/initiate", InitiateUpload(deps.Uploads))
	api.Post("/upload/:documentId/complete", CompleteUpload(deps.Uploads))

	api.Post("/validation/approve", Approve(deps.Validation))
	api.Post("/validation/reject", Reject(deps.Validation))
	api.Get("/validation/:documentId/status", GetValidationStatus(deps.Validation))

	api.Get("/download/:documentId", GetDownloadURL(deps.Downloads))

	api.Get("/documents", ListDocuments(deps.Documents))
	api.Get("/documents/:id", GetDocument(deps.Documents))
	api.Delete("/documents/:id", DeleteDocument(deps.Documents))
}

// HealthCheck godoc
// @Summary      Readiness probe
// @Description  Checks database connectivity.
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  errorPayload
// @Router       /health [get]
func HealthCheck(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db == nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe godoc
// @Summary  Liveness probe
// @Tags     health
// @Success  200
// @Router   /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// Metrics exposes the Prometheus registry in the text exposition format.
func Metrics(g prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

// ListDocuments godoc
// @Summary      List documents
// @Description  Paginated listing, optionally filtered by company and entity. The company falls back to the caller's company header.
// @Tags         documents
// @Produce      json
// @Param        company_id   query  string  false  "Company id"
// @Param        entity_type  query  string  false  "Entity type"
// @Param        entity_id    query  string  false  "Entity id"
// @Param        limit        query  int     false  "Page size"  default(10)
// @Param        offset       query  int     false  "Offset"     default(0)
// @Success      200  {object}  service.DocumentListResult
// @Failure      400  {object}  errorPayload
// @Router       /api/documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		filter := service.DocumentFilter{
			CompanyID:  c.Query("company_id", middleware.CompanyID(c)),
			EntityType: c.Query("entity_type"),
			EntityID:   c.Query("entity_id"),
		}
		if filter.CompanyID != "" {
			if _, err := uuid.Parse(filter.CompanyID); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_COMPANY_ID", "invalid company_id format")
			}
		}

		res, err := svc.List(c.UserContext(), filter, limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetDocument godoc
// @Summary   Get document metadata
// @Tags      documents
// @Produce   json
// @Param     id   path  string  true  "Document id"
// @Success   200  {object}  model.Document
// @Failure   400  {object}  errorPayload
// @Failure   404  {object}  errorPayload
// @Router    /api/documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument godoc
// @Summary   Delete a document and its stored object
// @Tags      documents
// @Param     id   path  string  true  "Document id"
// @Success   204
// @Failure   400  {object}  errorPayload
// @Failure   404  {object}  errorPayload
// @Router    /api/documents/{id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// pathID returns the named path parameter if it is a UUID.
func pathID(c *fiber.Ctx, name string) (string, bool) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}
