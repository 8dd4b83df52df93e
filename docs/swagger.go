// Package docs BCM backend API documentation
package docs

// Swagger documentation info
// @title BCM Backend API
// @version 1.0
// @description Multi-tenant business continuity management API. Every resource belongs to exactly one organization.

// @contact.name API Support

// @host localhost:8003
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

// @tag.name auth
// @tag.description Authentication and the current principal
// @tag.name organizations
// @tag.description Organization management
// @tag.name users
// @tag.description User management and role assignment
// @tag.name roles
// @tag.description Roles and their permission sets
// @tag.name permissions
// @tag.description Global permission registry
// @tag.name departments
// @tag.description Departments
// @tag.name locations
// @tag.description Locations
// @tag.name vendors
// @tag.description Third party vendors
// @tag.name applications
// @tag.description Applications
// @tag.name processes
// @tag.description Business processes and their dependencies
// @tag.name bia
// @tag.description Business impact analysis configuration
// @tag.name health
// @tag.description Service health
