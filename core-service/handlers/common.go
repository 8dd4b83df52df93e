// Package handlers exposes the core services over HTTP.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bcm-backend/core-service/middleware"
	"bcm-backend/core-service/services"
	"bcm-backend/shared/apperrors"
	"bcm-backend/shared/utils/permission"
	"bcm-backend/shared/utils/query"
	"bcm-backend/shared/utils/response"
)

// actor returns the authenticated principal or writes 401.
func actor(ctx *gin.Context) (permission.Principal, bool) {
	p, ok := middleware.CurrentPrincipal(ctx)
	if !ok {
		response.Error(ctx, apperrors.Unauthenticated("User not authenticated"))
		return permission.Principal{}, false
	}
	return p, true
}

// pathID parses a uuid path parameter or writes 400.
func pathID(ctx *gin.Context, param, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(param))
	if err != nil {
		response.BadRequest(ctx, "Invalid "+resource+" ID format", nil)
		return uuid.Nil, false
	}
	return id, true
}

// bind decodes the JSON body into dst or writes 400.
func bind(ctx *gin.Context, dst interface{}) bool {
	if err := ctx.ShouldBindJSON(dst); err != nil {
		response.BadRequest(ctx, "Invalid request body", err.Error())
		return false
	}
	return true
}

// request resolves the actor and the id path parameter in one step.
func request(ctx *gin.Context, resource string) (permission.Principal, uuid.UUID, bool) {
	p, ok := actor(ctx)
	if !ok {
		return p, uuid.Nil, false
	}
	id, ok := pathID(ctx, "id", resource)
	return p, id, ok
}

// The helpers below run the common shape of an organization scoped CRUD endpoint.

func handleList[T any](ctx *gin.Context, list func(context.Context, permission.Principal, query.FilterParams) (*services.Page[T], error)) {
	p, ok := actor(ctx)
	if !ok {
		return
	}
	page, err := list(ctx.Request.Context(), p, query.ParseQueryParams(ctx))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, page)
}

func handleGet[T any](ctx *gin.Context, resource string, get func(context.Context, permission.Principal, uuid.UUID) (*T, error)) {
	p, id, ok := request(ctx, resource)
	if !ok {
		return
	}
	item, err := get(ctx.Request.Context(), p, id)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, item)
}

func handleCreate[T, C any](ctx *gin.Context, create func(context.Context, permission.Principal, C) (*T, error)) {
	p, ok := actor(ctx)
	if !ok {
		return
	}
	var in C
	if !bind(ctx, &in) {
		return
	}
	item, err := create(ctx.Request.Context(), p, in)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.Created(ctx, item)
}

func handleUpdate[T, U any](ctx *gin.Context, resource string, update func(context.Context, permission.Principal, uuid.UUID, U) (*T, error)) {
	p, id, ok := request(ctx, resource)
	if !ok {
		return
	}
	var in U
	if !bind(ctx, &in) {
		return
	}
	item, err := update(ctx.Request.Context(), p, id, in)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, item)
}

func handleDelete(ctx *gin.Context, resource, message string, remove func(context.Context, permission.Principal, uuid.UUID) error) {
	p, id, ok := request(ctx, resource)
	if !ok {
		return
	}
	if err := remove(ctx.Request.Context(), p, id); err != nil {
		response.Error(ctx, err)
		return
	}
	response.Message(ctx, http.StatusOK, message)
}
