package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Result is the envelope of every API response
type Result[T any] struct {
	Success    bool        `json:"success"`
	Data       T           `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Response is the envelope as written by handlers
type Response = Result[interface{}]

// Pagination describes one page of a list
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// Success writes a 200 with data
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "Operación realizada",
		Data:    data,
	})
}

// Created writes a 201 with the created entity
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Message: "Creado correctamente",
		Data:    data,
	})
}

// SuccessWithPagination writes a 200 list page
func SuccessWithPagination(c *gin.Context, data interface{}, page, limit int, total int64) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "Operación realizada",
		Data:    data,
		Pagination: &Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
		},
	})
}

// Error writes a failure with the given status and optional detail
func Error(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Success: false,
		Message: message,
		Data:    data,
	})
}

// ServerError is reserved for infrastructure faults
func ServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Error del servidor", nil)
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "No autenticado", nil)
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Acceso denegado", nil)
}

func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "No encontrado"
	}
	Error(c, http.StatusNotFound, message, nil)
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message, nil)
}

// Conflict writes a 409 carrying the unavailable resources
func Conflict(c *gin.Context, message string, data interface{}) {
	Error(c, http.StatusConflict, message, data)
}

// Unprocessable writes a 422 carrying the full validation report
func Unprocessable(c *gin.Context, message string, data interface{}) {
	Error(c, http.StatusUnprocessableEntity, message, data)
}
