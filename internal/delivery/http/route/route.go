package route

import (
	"github.com/sportmeetapp/sportmeet/internal/delivery/http"
	"github.com/sportmeetapp/sportmeet/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v2"
)

type RouteConfig struct {
	App                  *fiber.App
	AuthMiddleware       *middleware.AuthMiddleware
	UserController       *http.UserController
	EventController      *http.EventController
	MembershipController *http.MembershipController
}

func (c *RouteConfig) SetupRoute() {
	api := c.App.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authGroup := api.Group("/auth")
	authGroup.Post("/register", c.UserController.Register)
	authGroup.Post("/verify", c.UserController.VerifyEmail)
	authGroup.Post("/login", c.UserController.Login)

	userGroup := api.Group("/users", c.AuthMiddleware.ProtectedRoute())
	userGroup.Get("/me", c.UserController.GetUserInfo)
	userGroup.Patch("/me", c.UserController.UpdateProfile)
	userGroup.Put("/me/avatar", c.UserController.UpdateAvatar)
	userGroup.Post("/logout", c.UserController.Logout)

	eventGroup := api.Group("/events", c.AuthMiddleware.ProtectedRoute())
	eventGroup.Post("/", c.EventController.CreateEvent)
	eventGroup.Get("/", c.EventController.ListEvents)
	eventGroup.Get("/joined", c.MembershipController.GetJoinedEvents)
	eventGroup.Get("/mine", c.EventController.ListHostedEvents)
	eventGroup.Get("/:eventId", c.EventController.GetEvent)
	eventGroup.Patch("/:eventId", c.EventController.UpdateEvent)
	eventGroup.Delete("/:eventId", c.EventController.DeleteEvent)
	eventGroup.Post("/:eventId/join", c.MembershipController.JoinEvent)
	eventGroup.Delete("/:eventId/join", c.MembershipController.LeaveEvent)
	eventGroup.Get("/:eventId/participants", c.MembershipController.GetParticipantsForHost)
}
