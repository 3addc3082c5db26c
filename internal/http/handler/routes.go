package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"docshare/internal/auth"
	"docshare/internal/http/middleware"
	"docshare/internal/ratelimit"
	"docshare/internal/service"
)

// Deps bundles everything the route table needs.
type Deps struct {
	DB            *sql.DB
	Accounts      service.AccountService
	Documents     service.DocumentService
	Access        service.AccessService
	ShareLinks    service.ShareLinkService
	EmailShares   service.EmailShareService
	Tokens        *auth.TokenManager
	Limiter       ratelimit.Store
	SecureCookies bool
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Handlers are
// constructed per route; business logic stays in the services.
func RegisterRoutes(app *fiber.App, d Deps) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", Register(d.Accounts))
	authGroup.Post("/login", Login(d.Accounts))
	authGroup.Post("/request-reset", RequestPasswordReset(d.Accounts, d.Limiter))
	authGroup.Post("/reset-password", ResetPassword(d.Accounts, d.Limiter))

	requireSession := middleware.RequireSession(d.Tokens)

	documents := api.Group("/documents", requireSession)
	documents.Get("/", ListDocuments(d.Documents))
	documents.Post("/", UploadDocument(d.Documents))
	documents.Get("/:id", GetDocument(d.Access))
	documents.Get("/:id/url", DocumentURL(d.Access, d.Documents))
	documents.Delete("/:id", DeleteDocument(d.Documents))

	share := api.Group("/share")
	share.Post("/link", requireSession, CreateShareLink(d.ShareLinks))
	share.Patch("/link/:id/revoke", requireSession, RevokeShareLink(d.ShareLinks))
	share.Post("/email", requireSession, CreateEmailShare(d.EmailShares))
	share.Delete("/email/:id", requireSession, RevokeEmailShare(d.EmailShares))
	// Password verification and tracking run before any session exists on the
	// viewer side; viewing itself requires a logged-in viewer.
	share.Post("/:shareKey/verify-password", VerifySharePassword(d.ShareLinks, d.Limiter, d.SecureCookies))
	share.Post("/:shareKey/track", TrackShareView(d.ShareLinks))
	share.Get("/:shareKey", requireSession, ViewShare(d.ShareLinks, d.Tokens))

	api.Get("/inbox", requireSession, Inbox(d.EmailShares))
}
