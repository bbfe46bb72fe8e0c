package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fyp-manager-api/internal/middleware"
	"github.com/noah-isme/fyp-manager-api/internal/models"
	"github.com/noah-isme/fyp-manager-api/internal/service"
)

// Handlers groups every HTTP handler mounted by RegisterRoutes.
type Handlers struct {
	Auth         *AuthHandler
	Department   *DepartmentHandler
	Student      *StudentHandler
	Guide        *GuideHandler
	Group        *GroupHandler
	Task         *TaskHandler
	Notification *NotificationHandler
	Chat         *ChatHandler
	Export       *ExportHandler
	Upload       *UploadHandler
	Audit        *AuditHandler
	Metrics      *MetricsHandler
}

// RouterConfig carries the cross-cutting middleware dependencies.
type RouterConfig struct {
	APIPrefix   string
	Session     *middleware.Session
	Audit       middleware.AuditRecorder
	ChatLimiter *middleware.RateLimiter
	Metrics     *service.MetricsService
}

// RegisterRoutes mounts the REST surface on r.
func RegisterRoutes(r *gin.Engine, h Handlers, cfg RouterConfig) {
	prefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	if prefix == "/" {
		prefix = "/api"
	}

	r.Use(middleware.Metrics(cfg.Metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	r.GET("/uploads/*filepath", h.Upload.Download)

	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(cfg.Audit, action, resource)
	}
	admin := middleware.RequireRoles(models.RoleAdmin)
	guide := middleware.RequireRoles(models.RoleGuide)
	student := middleware.RequireRoles(models.RoleStudent)
	guideOrAdmin := middleware.RequireRoles(models.RoleGuide, models.RoleAdmin)
	studentOrAdmin := middleware.RequireRoles(models.RoleStudent, models.RoleAdmin)

	api := r.Group(prefix)
	api.Use(middleware.WithResponseMeta())

	api.POST("/login", audit(models.AuditActionLogin, "session"), h.Auth.Login)
	api.POST("/logout", h.Auth.Logout)
	api.POST("/signup", cfg.Session.Optional(), audit(models.AuditActionSignup, "admin"), h.Auth.Signup)

	secured := api.Group("")
	secured.Use(cfg.Session.Require())

	secured.GET("/me", h.Auth.Me)

	secured.GET("/getDepartment", h.Department.List)
	secured.GET("/getDepartment/:id", h.Department.Get)
	secured.POST("/addDepartment", admin, audit(models.AuditActionDepartmentCreate, "department"), h.Department.Create)
	secured.PUT("/updateDepartment/:id", admin, audit(models.AuditActionDepartmentUpdate, "department"), h.Department.Update)
	secured.DELETE("/deleteDepartment/:id", admin, audit(models.AuditActionDepartmentDelete, "department"), h.Department.Delete)

	secured.GET("/getStudents", h.Student.List)
	secured.POST("/addStudent", admin, audit(models.AuditActionStudentCreate, "student"), h.Student.Create)
	for _, path := range []string{"/updateStudent/:id", "/editStudents/:id"} {
		secured.PUT(path, admin, audit(models.AuditActionStudentUpdate, "student"), h.Student.Update)
	}
	for _, path := range []string{"/deleteStudent/:id", "/deleteStudents/:id"} {
		secured.DELETE(path, admin, audit(models.AuditActionStudentDelete, "student"), h.Student.Delete)
	}

	secured.GET("/getGuids", h.Guide.List)
	for _, path := range []string{"/addGuid", "/createGuid"} {
		secured.POST(path, admin, audit(models.AuditActionGuideCreate, "guide"), h.Guide.Create)
	}
	for _, path := range []string{"/updateGuid/:id", "/updateGuids/:id"} {
		secured.PUT(path, admin, audit(models.AuditActionGuideUpdate, "guide"), h.Guide.Update)
	}
	for _, path := range []string{"/deleteGuid/:id", "/deleteGuids/:id"} {
		secured.DELETE(path, admin, audit(models.AuditActionGuideDelete, "guide"), h.Guide.Delete)
	}

	secured.POST("/createGroup", student, audit(models.AuditActionGroupCreate, "group"), h.Group.Create)
	secured.GET("/getGroup", h.Group.List)
	secured.GET("/getGroup/:id", h.Group.Get)
	secured.PUT("/editGroup/:id", studentOrAdmin, audit(models.AuditActionGroupUpdate, "group"), h.Group.Edit)
	secured.PUT("/assignGroup", guideOrAdmin, audit(models.AuditActionGroupAssign, "group"), h.Group.Assign)
	secured.PUT("/rejectGroup/:id", guide, audit(models.AuditActionGroupReject, "group"), h.Group.Reject)

	secured.POST("/addTask", guideOrAdmin, audit(models.AuditActionTaskCreate, "task"), h.Task.Add)
	secured.GET("/getTask", h.Task.List)
	secured.PUT("/submitTaskFile/:id", student, audit(models.AuditActionTaskSubmit, "task"), h.Task.Submit)
	secured.PUT("/reviewTask/:id", guideOrAdmin, audit(models.AuditActionTaskReview, "task"), h.Task.Review)
	secured.PUT("/publishFinalMarks/:id", guide, audit(models.AuditActionTaskPublish, "task"), h.Task.PublishFinalMarks)
	secured.DELETE("/deleteTask/:id", guideOrAdmin, audit(models.AuditActionTaskDelete, "task"), h.Task.Delete)
	secured.GET("/exportMarks/:groupId", guideOrAdmin, h.Export.MarkSheet)

	notify := audit(models.AuditActionNotificationCreate, "notification")
	secured.POST("/createNotification", admin, notify, h.Notification.BroadcastToGuides)
	secured.POST("/specificTeacherNotification", admin, notify, h.Notification.SendToGuides)
	secured.POST("/createStudentNotification", admin, notify, h.Notification.BroadcastToStudents)
	secured.POST("/createSpecificNotification", admin, notify, h.Notification.SendToStudents)
	secured.POST("/createNotificationByTeacher", guide, notify, h.Notification.SendFromGuide)
	secured.GET("/getNotification", h.Notification.List)
	secured.GET("/getNotification/:id", admin, h.Notification.Get)

	chat := []gin.HandlerFunc{}
	if cfg.ChatLimiter != nil {
		chat = append(chat, cfg.ChatLimiter.Middleware())
	}
	secured.POST("/chat", append(chat, h.Chat.Reply)...)

	secured.GET("/auditLogs", admin, h.Audit.List)
}
