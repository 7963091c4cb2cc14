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
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/AleutianAI/faultkit/services/faultinject/taxonomy"
)

// RequestIDHeader carries the per-request ID.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("fault_category", func(fl validator.FieldLevel) bool {
			_, err := taxonomy.ParseCategory(fl.Field().String())
			return err == nil
		})
	}
}

// RequestID sets X-Request-ID on every response.
//
// An incoming X-Request-ID is kept when it is a valid UUID; otherwise a new
// version 4 UUID is generated. The ID is stored on the gin context under
// "request_id".
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
