package controllers

import (
	"net/http"
	"strings"

	"reservas/dto"
	"reservas/middleware"
	"reservas/response"
	"reservas/services"
	"reservas/services/logger"

	"github.com/gin-gonic/gin"
)

const maxUploadSize = 10 << 20

type ImportController struct {
	service *services.ImportService
	logger  logger.Logger
}

func NewImportController(service *services.ImportService, log logger.Logger) *ImportController {
	if log == nil {
		log = logger.Nop()
	}
	return &ImportController{service: service, logger: log}
}

// workbook reads the batch from a multipart xlsx upload or a JSON body
func (ic *ImportController) workbook(c *gin.Context) (*services.Workbook, bool) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			response.BadRequest(c, "Falta el archivo 'file'")
			return nil, false
		}
		if header.Size > maxUploadSize {
			response.BadRequest(c, "El archivo supera el tamaño máximo de 10 MB")
			return nil, false
		}
		f, err := header.Open()
		if err != nil {
			handleError(c, ic.logger, err)
			return nil, false
		}
		defer f.Close()
		wb, err := services.ReadWorkbook(f, services.NormalizeFileName(header.Filename))
		if err != nil {
			handleError(c, ic.logger, err)
			return nil, false
		}
		return wb, true
	}

	var req dto.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return nil, false
	}
	return &services.Workbook{
		FileName: req.FileName,
		Rooms:    services.SheetFromRecords(req.Rooms),
		Events:   services.SheetFromRecords(req.Events),
	}, true
}

// Import handles POST /importar and POST /importar/excel
func (ic *ImportController) Import(c *gin.Context) {
	wb, ok := ic.workbook(c)
	if !ok {
		return
	}
	result, err := ic.service.Import(c.Request.Context(), middleware.GetSession(c), wb)
	if err != nil {
		handleError(c, ic.logger, err)
		return
	}
	if !result.Valid() {
		response.Unprocessable(c, services.NothingSavedMessage, result)
		return
	}
	c.JSON(http.StatusCreated, response.Response{
		Success: true,
		Message: "Importación completada",
		Data:    result,
	})
}

// Validate handles POST /importar/validar: every check, no writes
func (ic *ImportController) Validate(c *gin.Context) {
	wb, ok := ic.workbook(c)
	if !ok {
		return
	}
	result, err := ic.service.Validate(c.Request.Context(), wb)
	if err != nil {
		handleError(c, ic.logger, err)
		return
	}
	message := "El archivo es válido"
	if !result.Valid() {
		message = "El archivo tiene errores"
	}
	c.JSON(http.StatusOK, response.Response{
		Success: result.Valid(),
		Message: message,
		Data:    result,
	})
}

// List handles GET /importaciones
func (ic *ImportController) List(c *gin.Context) {
	var q dto.ImportListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	if q.Limit == 0 {
		q.Limit = 10
	}
	logs, total, err := ic.service.ListImports(c.Request.Context(), q.Page, q.Limit)
	if err != nil {
		handleError(c, ic.logger, err)
		return
	}
	response.SuccessWithPagination(c, logs, q.Page, q.Limit, total)
}
