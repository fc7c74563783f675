package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"unsritalk/internal/config"
	"unsritalk/internal/dashboard"
	"unsritalk/internal/middleware"
	"unsritalk/internal/models"
	"unsritalk/internal/service"
	"unsritalk/internal/store"
)

// Deps is everything the HTTP surface talks to. Redis and Postgres are optional and only
// used for health reporting.
type Deps struct {
	Config        *config.AppConfig
	Log           zerolog.Logger
	Store         *store.Store
	Selector      *dashboard.Selector
	Auth          *service.AuthService
	Chats         *service.ChatService
	Announcements *service.AnnouncementService
	Avatars       *service.AvatarService
	Redis         *redis.Client
	Postgres      *pgxpool.Pool
}

type HandlerSet struct {
	log           zerolog.Logger
	cfg           *config.AppConfig
	store         *store.Store
	selector      *dashboard.Selector
	auth          *service.AuthService
	chats         *service.ChatService
	announcements *service.AnnouncementService
	avatars       *service.AvatarService
	redis         *redis.Client
	postgres      *pgxpool.Pool
}

func NewHandlerSet(deps Deps) HandlerSet {
	return HandlerSet{
		log:           deps.Log,
		cfg:           deps.Config,
		store:         deps.Store,
		selector:      deps.Selector,
		auth:          deps.Auth,
		chats:         deps.Chats,
		announcements: deps.Announcements,
		avatars:       deps.Avatars,
		redis:         deps.Redis,
		postgres:      deps.Postgres,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		v1.GET("/theme", h.GetTheme)
		v1.PUT("/theme", h.SetTheme)

		auth := v1.Group("/auth")
		auth.POST("/register", h.RegisterUser)
		auth.POST("/login", h.Login)
	}

	protected := v1.Group("")
	protected.Use(middleware.Auth(h.auth, h.selector))
	{
		protected.POST("/auth/logout", h.Logout)

		protected.GET("/me", h.Me)
		protected.PATCH("/me", h.UpdateMe)
		protected.POST("/me/avatar", h.UploadAvatar)

		protected.GET("/dashboard", h.Menu)
		protected.GET("/dashboard/sections/:key", h.Section)

		protected.GET("/chats/:id", h.GetChat)
		protected.PATCH("/chats/:id", h.RenameGroup)
		protected.POST("/chats/:id/messages", h.SendMessage)
		protected.POST("/chats/:id/avatar", h.UploadGroupAvatar)
		protected.POST("/chats/:id/participants", h.AddParticipant)
		protected.POST("/groups", h.CreateGroup)
		protected.POST("/consultations", h.StartConsultation)
		protected.POST("/connections", h.ConnectAlumni)

		protected.GET("/announcements", h.ListAnnouncements)
		protected.POST("/announcements", h.PublishAnnouncement)
	}

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireCapability(func(d dashboard.Dashboard) bool {
		return d.Role() == models.RoleServerAdmin
	}))
	{
		admin.GET("/users", middleware.RequirePermissions(models.PermissionManageUsers), h.AdminListUsers)
		admin.GET("/chats", middleware.RequirePermissions(models.PermissionMonitorChats), h.AdminListChats)
	}
}
