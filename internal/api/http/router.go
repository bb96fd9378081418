package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/teamhub/team-service/internal/api/http/handlers"
	"github.com/teamhub/team-service/internal/auth"
	"github.com/teamhub/team-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Teams          *handlers.TeamHandler
	Organizations  *handlers.OrganizationHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	org := app.Group("/api/organization/:organizationId", cfg.AuthMiddleware.Handle)
	org.Get("", cfg.Organizations.GetOrganization)
	org.Post("/addOwner", cfg.Organizations.AddOwners)
	org.Post("/logo/upload", cfg.Organizations.UploadLogo)
	org.Delete("/logo/delete", cfg.Organizations.DeleteLogo)
	org.Post("/invitations", cfg.Organizations.Invite)
	org.Post("/invitations/accept", cfg.Organizations.AcceptInvitation)
	org.Get("/activity", cfg.Organizations.ListActivity)

	org.Post("/team", cfg.Teams.CreateTeam)
	org.Get("/teams/all", cfg.Teams.ListTeams)
	org.Get("/teams/:teamId", cfg.Teams.GetTeam)
	org.Put("/team/:teamId", cfg.Teams.UpdateTeam)
	org.Delete("/team/:teamId", cfg.Teams.DeleteTeam)
	org.Post("/team/:teamId/addMember", cfg.Teams.AddMembers)
	org.Delete("/team/:teamId/members/:userId", cfg.Teams.RemoveMember)
	org.Post("/team/:teamId/avatar/upload", cfg.Teams.UploadAvatar)
	org.Delete("/team/:teamId/avatar/delete", cfg.Teams.DeleteAvatar)
}
