// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/faultkit/services/faultinject/telemetry"
)

// RegisterRoutes registers the /faults and /errors endpoints on rg.
//
// Example:
//
//	v1 := router.Group("/v1")
//	handlers.RegisterRoutes(v1, h)
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	faults := rg.Group("/faults")
	{
		faults.GET("", h.HandleListFaults)
		faults.GET("/catalog", h.HandleCatalog)
		faults.GET("/plan", h.HandleExportPlan)
		faults.PUT("/:category", h.HandleSetFault)
		faults.DELETE("/:category", h.HandleClearFault)
		faults.DELETE("", h.HandleReset)
		faults.POST("/profiles/:name", h.HandleApplyProfile)
	}

	errs := rg.Group("/errors")
	{
		errs.POST("", h.HandleMint)
		errs.POST("/validate", h.HandleValidate)
		errs.POST("/audit", h.HandleAudit)
	}
}

// NewRouter builds the complete admin API engine.
//
// Middleware order: panic recovery, OTel tracing, request ID. /health and
// /metrics sit outside /v1.
func NewRouter(h *Handlers, serviceName string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(RequestID())

	router.GET("/health", h.HandleHealth)
	router.GET("/metrics", gin.WrapH(telemetry.MetricsHandler()))

	RegisterRoutes(router.Group("/v1"), h)
	return router
}
