package handler

import (
	"github.com/gofiber/fiber/v2"

	"cloudvault/internal/http/middleware"
	"cloudvault/internal/service"
)

// Deps are the collaborators RegisterRoutes wires into handlers.
type Deps struct {
	DB     Pinger
	Auth   service.AuthService
	Files  service.FileService
	Shares service.ShareService
	Tags   service.TagService
	// Secret verifies bearer tokens.
	Secret []byte
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	authed := middleware.Auth(d.Secret)
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", Register(d.Auth))
	auth.Post("/login", Login(d.Auth))
	auth.Post("/google", GoogleLogin(d.Auth))
	auth.Get("/google/url", GoogleAuthURL(d.Auth))
	auth.Get("/profile", authed, Profile(d.Auth))

	// static segments before /:id
	files := api.Group("/files", authed)
	files.Get("/", ListFiles(d.Files))
	files.Post("/upload", UploadFile(d.Files))
	files.Get("/search", SearchFiles(d.Files))
	files.Get("/storage/health", StorageHealth(d.Files))
	files.Post("/trash/hide", HideFromTrash(d.Files))
	files.Post("/trash/delete", PurgeTrash(d.Files))
	files.Get("/:id", GetFile(d.Files))
	files.Get("/:id/download", DownloadFile(d.Files))
	files.Get("/:id/preview", PreviewFile(d.Files))
	files.Delete("/:id", DeleteFile(d.Files))
	files.Patch("/:id/restore", RestoreFile(d.Files))

	// resolve is public, so auth is per route here
	shares := api.Group("/shares")
	shares.Get("/", authed, ListShares(d.Shares))
	shares.Get("/:token", ResolveShare(d.Shares))
	shares.Post("/:id", authed, CreateShare(d.Shares))
	shares.Delete("/:id", authed, DeactivateShare(d.Shares))

	tags := api.Group("/tags", authed)
	tags.Get("/", ListTags(d.Tags))
	tags.Post("/", CreateTag(d.Tags))
	tags.Patch("/:id", UpdateTag(d.Tags))
	tags.Delete("/:id", DeleteTag(d.Tags))
}
