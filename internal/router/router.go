package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/tasklight/backend/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Account *apiHandler.AccountHandler
	Task    *apiHandler.TaskHandler
	Health  *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/", handlers.Health.Root)
	r.GET("/health", handlers.Health.Check)

	// Public auth routes
	r.POST("/register", handlers.Auth.Register)
	r.POST("/login", handlers.Auth.Login)

	// Protected routes
	r.GET("/me", authMiddleware(handlers.Account.GetAccount))

	r.GET("/tasks", authMiddleware(handlers.Task.ListTasks))
	r.POST("/tasks", authMiddleware(handlers.Task.CreateTask))
	r.GET("/tasks/{id}", authMiddleware(handlers.Task.GetTask))
	r.PUT("/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.DELETE("/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	return r
}
