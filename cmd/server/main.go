package main

import (
	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/harukimoto/workspace-hub/internal/config"
	"github.com/harukimoto/workspace-hub/internal/database"
	"github.com/harukimoto/workspace-hub/internal/handlers"
	"github.com/harukimoto/workspace-hub/internal/middleware"
	"github.com/harukimoto/workspace-hub/internal/notify"
	"github.com/harukimoto/workspace-hub/internal/repository"
	"github.com/harukimoto/workspace-hub/internal/services"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	var log *zap.Logger
	var err error
	if cfg.GinMode == "release" {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	gin.SetMode(cfg.GinMode)

	if err := database.Connect(cfg, log); err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	if cfg.DBDriver == "postgres" {
		if err := database.AddIndexes(database.GetDB(), log); err != nil {
			log.Fatal("failed to add indexes", zap.Error(err))
		}
	}

	r := gin.Default()

	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,
		"tcp",
		redisAddr,
		"",
		"",
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		log.Fatal("failed to create Redis store", zap.Error(err))
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // Lax
	})
	r.Use(sessions.Sessions("workspace_session", store))

	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	wsRepo := repository.NewWorkspaceRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	notifier := notify.NewLogNotifier(log)

	wsService := services.NewWorkspaceService(wsRepo, taskRepo, userRepo, notifier)
	taskService := services.NewTaskService(taskRepo, projectRepo, wsRepo, userRepo, notifier)
	activityService := services.NewActivityService(activityRepo, taskRepo)
	authService := services.NewAuthService(userRepo, wsService, notifier)

	authHandler := handlers.NewAuthHandler(authService)
	wsHandler := handlers.NewWorkspaceHandler(wsService, activityService)
	taskHandler := handlers.NewTaskHandler(taskService, activityService)
	projectHandler := handlers.NewProjectHandler(projectRepo)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Workspace Hub API is running",
		})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/verify", authHandler.VerifyEmail)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		workspaces := api.Group("/workspaces")
		workspaces.Use(middleware.RequireAuth())
		{
			workspaces.POST("", wsHandler.CreateWorkspace)
			workspaces.GET("", wsHandler.ListWorkspaces)
			workspaces.POST("/join", wsHandler.JoinWorkspace)

			scoped := workspaces.Group("/:id")
			scoped.Use(middleware.RequireWorkspaceAccess())
			{
				scoped.GET("", wsHandler.GetWorkspace)
				scoped.PUT("", wsHandler.UpdateWorkspace)
				scoped.DELETE("", wsHandler.DeleteWorkspace)
				scoped.PUT("/assignment-rules", wsHandler.UpdateAssignmentRules)
				scoped.POST("/regenerate-code", middleware.RequireWorkspaceOwner(), wsHandler.RegenerateInviteCode)
				scoped.GET("/activities", wsHandler.ListWorkspaceActivities)

				scoped.PUT("/members/:user_id/role", wsHandler.ChangeMemberRole)
				scoped.DELETE("/members/:user_id", wsHandler.RemoveMember)
				scoped.GET("/members/:user_id/tasks", wsHandler.PreviewMemberTasks)

				scoped.POST("/projects", projectHandler.CreateProject)
				scoped.GET("/projects", projectHandler.ListProjects)

				scoped.POST("/tasks", taskHandler.CreateTask)
				scoped.GET("/tasks", taskHandler.ListTasks)
				scoped.GET("/tasks/:task_id", taskHandler.GetTask)
				scoped.PATCH("/tasks/:task_id", taskHandler.UpdateTask)
				scoped.DELETE("/tasks/:task_id", taskHandler.DeleteTask)
				scoped.GET("/tasks/:task_id/activities", taskHandler.ListTaskActivities)
			}
		}
	}

	log.Info("server starting", zap.String("addr", ":8080"))
	if err := r.Run(":8080"); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
