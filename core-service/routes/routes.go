// Package routes mounts the core API and declares the access rule of every endpoint.
package routes

import (
	"github.com/gin-gonic/gin"

	"bcm-backend/core-service/handlers"
	"bcm-backend/core-service/middleware"
	"bcm-backend/core-service/services"
	"bcm-backend/shared/database"
)

// Services are the domain services behind the API.
type Services struct {
	Auth          *services.AuthService
	Identity      *services.IdentityService
	Organizations *services.OrganizationService
	Users         *services.UserService
	Roles         *services.RoleService
	Permissions   *services.PermissionService
	Departments   *services.DepartmentService
	Locations     *services.LocationService
	Vendors       *services.VendorService
	Applications  *services.ApplicationService
	Processes     *services.ProcessService
	Categories    *services.BIACategoryService
	Criteria      *services.BIAImpactCriterionService
	Frameworks    *services.BIAFrameworkService
	Timeframes    *services.BIATimeframeService
}

// Middlewares are the cross cutting handlers applied to the API group.
// Limiter and Audit are optional. RateLimit applies to every API request and
// LoginRateLimit additionally to logins.
type Middlewares struct {
	Gate           *middleware.Gate
	Limiter        *middleware.RateLimiter
	RateLimit      middleware.RateLimitConfig
	LoginRateLimit middleware.RateLimitConfig
	Audit          *middleware.AuditRecorder
}

var (
	assetWriters = []string{database.RoleAdmin, database.RoleBCMManager}
	assetReaders = []string{database.RoleAdmin, database.RoleBCMManager, database.RoleDepartmentHead}
)

// Register mounts every endpoint under /api.
func Register(router *gin.Engine, s Services, m Middlewares) {
	gate := m.Gate
	api := router.Group("/api")
	if m.Limiter != nil {
		api.Use(m.Limiter.RateLimitMiddleware(m.RateLimit))
	}
	if m.Audit != nil {
		api.Use(m.Audit.Middleware())
	}

	authHandler := handlers.NewAuthHandler(s.Auth)
	authRoutes := api.Group("/auth")
	{
		login := []gin.HandlerFunc{authHandler.Login}
		if m.Limiter != nil {
			login = append([]gin.HandlerFunc{m.Limiter.LoginRateLimitMiddleware(m.LoginRateLimit)}, login...)
		}
		authRoutes.POST("/login", login...)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(s.Identity))

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/auth/me", authHandler.Me)
	protected.POST("/auth/change-password", authHandler.ChangePassword)

	// Organization routes
	orgs := handlers.NewOrganizationHandler(s.Organizations)
	protected.GET("/organizations", gate.Permissions("organization:read"), orgs.GetOrganizations)
	protected.GET("/organizations/:id", gate.Permissions("organization:read"), orgs.GetOrganization)
	protected.POST("/organizations", gate.Permissions("organization:create"), orgs.CreateOrganization)
	protected.PUT("/organizations/:id", gate.Permissions("organization:update"), orgs.UpdateOrganization)

	// User routes
	users := handlers.NewUserHandler(s.Users)
	userRead := gate.Roles(database.RoleAdmin, database.RoleBCMManager, database.RoleDepartmentHead)
	userWrite := gate.Roles(database.RoleAdmin)
	protected.GET("/users", userRead, users.GetUsers)
	protected.GET("/users/:id", userRead, users.GetUser)
	protected.GET("/users/:id/permissions", userRead, users.GetUserPermissions)
	protected.POST("/users", userWrite, users.CreateUser)
	protected.PUT("/users/:id", userWrite, users.UpdateUser)
	protected.DELETE("/users/:id", userWrite, users.DeleteUser)
	protected.POST("/users/:id/roles/:roleId", gate.Permissions("role:assign"), users.AssignRole)
	protected.DELETE("/users/:id/roles/:roleId", gate.Permissions("role:assign"), users.RemoveRole)

	// Role routes
	roles := handlers.NewRoleHandler(s.Roles)
	protected.GET("/roles", gate.Permissions("role:read"), roles.GetRoles)
	protected.GET("/roles/:id", gate.Permissions("role:read"), roles.GetRole)
	protected.POST("/roles", gate.Permissions("role:create"), roles.CreateRole)
	protected.PUT("/roles/:id", gate.Permissions("role:update"), roles.UpdateRole)
	protected.DELETE("/roles/:id", gate.Permissions("role:delete"), roles.DeleteRole)
	protected.GET("/roles/:id/permissions", gate.Permissions("role:read"), roles.GetRolePermissions)
	protected.PUT("/roles/:id/permissions", gate.Permissions("role:update"), roles.ReplaceRolePermissions)
	protected.POST("/roles/:id/permissions", gate.Permissions("role:update"), roles.AddRolePermissions)
	protected.DELETE("/roles/:id/permissions", gate.Permissions("role:update"), roles.RemoveRolePermissions)

	// Permission routes
	perms := handlers.NewPermissionHandler(s.Permissions)
	protected.GET("/permissions", gate.Permissions("permission:read"), perms.GetPermissions)
	protected.GET("/permissions/:id", gate.Permissions("permission:read"), perms.GetPermission)

	// Department and location routes
	departments := handlers.NewDepartmentHandler(s.Departments)
	locations := handlers.NewLocationHandler(s.Locations)
	read, write := gate.Roles(assetReaders...), gate.Roles(assetWriters...)
	protected.GET("/departments", read, departments.GetDepartments)
	protected.GET("/departments/:id", read, departments.GetDepartment)
	protected.POST("/departments", write, departments.CreateDepartment)
	protected.PUT("/departments/:id", write, departments.UpdateDepartment)
	protected.DELETE("/departments/:id", write, departments.DeleteDepartment)
	protected.GET("/locations", read, locations.GetLocations)
	protected.GET("/locations/:id", read, locations.GetLocation)
	protected.POST("/locations", write, locations.CreateLocation)
	protected.PUT("/locations/:id", write, locations.UpdateLocation)
	protected.DELETE("/locations/:id", write, locations.DeleteLocation)

	// Vendor and application routes
	vendors := handlers.NewVendorHandler(s.Vendors)
	protected.GET("/vendors", gate.Permissions("vendor:read"), vendors.GetVendors)
	protected.GET("/vendors/:id", gate.Permissions("vendor:read"), vendors.GetVendor)
	protected.POST("/vendors", gate.Permissions("vendor:create"), vendors.CreateVendor)
	protected.PUT("/vendors/:id", gate.Permissions("vendor:update"), vendors.UpdateVendor)
	protected.DELETE("/vendors/:id", gate.Permissions("vendor:delete"), vendors.DeleteVendor)

	apps := handlers.NewApplicationHandler(s.Applications)
	protected.GET("/applications", gate.Permissions("application:read"), apps.GetApplications)
	protected.GET("/applications/:id", gate.Permissions("application:read"), apps.GetApplication)
	protected.POST("/applications", gate.Permissions("application:create"), apps.CreateApplication)
	protected.PUT("/applications/:id", gate.Permissions("application:update"), apps.UpdateApplication)
	protected.DELETE("/applications/:id", gate.Permissions("application:delete"), apps.DeleteApplication)

	processes := handlers.NewProcessHandler(s.Processes)
	protected.GET("/processes", gate.Permissions("process:read"), processes.GetProcesses)
	protected.GET("/processes/:id", gate.Permissions("process:read"), processes.GetProcess)
	protected.POST("/processes", gate.Permissions("process:create"), processes.CreateProcess)
	protected.PUT("/processes/:id", gate.Permissions("process:update"), processes.UpdateProcess)
	protected.DELETE("/processes/:id", gate.Permissions("process:delete"), processes.DeleteProcess)

	// BIA routes
	bia := protected.Group("/bia")
	categories := handlers.NewBIACategoryHandler(s.Categories)
	bia.GET("/categories", gate.Permissions("bia_category:read"), categories.GetBIACategories)
	bia.GET("/categories/:id", gate.Permissions("bia_category:read"), categories.GetBIACategory)
	bia.POST("/categories", gate.Permissions("bia_category:create"), categories.CreateBIACategory)
	bia.PUT("/categories/:id", gate.Permissions("bia_category:update"), categories.UpdateBIACategory)
	bia.DELETE("/categories/:id", gate.Permissions("bia_category:delete"), categories.DeleteBIACategory)

	criteria := handlers.NewBIAImpactCriterionHandler(s.Criteria)
	bia.GET("/impact-criteria", gate.Permissions("bia_impact_criterion:read"), criteria.GetBIAImpactCriteria)
	bia.GET("/impact-criteria/:id", gate.Permissions("bia_impact_criterion:read"), criteria.GetBIAImpactCriterion)
	bia.POST("/impact-criteria", gate.Permissions("bia_impact_criterion:create"), criteria.CreateBIAImpactCriterion)
	bia.PUT("/impact-criteria/:id", gate.Permissions("bia_impact_criterion:update"), criteria.UpdateBIAImpactCriterion)
	bia.DELETE("/impact-criteria/:id", gate.Permissions("bia_impact_criterion:delete"), criteria.DeleteBIAImpactCriterion)

	frameworks := handlers.NewBIAFrameworkHandler(s.Frameworks)
	bia.GET("/frameworks", gate.Permissions("bia_framework:read"), frameworks.GetBIAFrameworks)
	bia.GET("/frameworks/:id", gate.Permissions("bia_framework:read"), frameworks.GetBIAFramework)
	bia.POST("/frameworks", gate.Permissions("bia_framework:create"), frameworks.CreateBIAFramework)
	bia.PUT("/frameworks/:id", gate.Permissions("bia_framework:update"), frameworks.UpdateBIAFramework)
	bia.DELETE("/frameworks/:id", gate.Permissions("bia_framework:delete"), frameworks.DeleteBIAFramework)

	timeframes := handlers.NewBIATimeframeHandler(s.Timeframes)
	bia.GET("/timeframes", gate.Permissions("bia_timeframe:read"), timeframes.GetBIATimeframes)
	bia.GET("/timeframes/:id", gate.Permissions("bia_timeframe:read"), timeframes.GetBIATimeframe)
	bia.POST("/timeframes", gate.Permissions("bia_timeframe:create"), timeframes.CreateBIATimeframe)
	bia.PUT("/timeframes/:id", gate.Permissions("bia_timeframe:update"), timeframes.UpdateBIATimeframe)
	bia.DELETE("/timeframes/:id", gate.Permissions("bia_timeframe:delete"), timeframes.DeleteBIATimeframe)
}
