package api

import "github.com/meraroom/meraroom-server/internal/service"

// Services groups the business logic services used by the API server.
type Services struct {
	Catalog *service.CatalogService
	Auth    *service.AuthService
	Session *service.SessionService
}
