// internal/handlers/admin.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/autoimport/internal/i18n"
	"github.com/javajoker/autoimport/internal/services"
	"github.com/javajoker/autoimport/internal/source"
	"github.com/javajoker/autoimport/internal/utils"
)

type AdminHandler struct {
	adminService  *services.AdminService
	syncService   *services.SyncService
	importService *services.ImportService
}

func NewAdminHandler(adminService *services.AdminService, syncService *services.SyncService, importService *services.ImportService) *AdminHandler {
	return &AdminHandler{
		adminService:  adminService,
		syncService:   syncService,
		importService: importService,
	}
}

// GET /v1/admin/stats
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stats": stats,
	})
}

// POST /v1/admin/sync
func (h *AdminHandler) StartSync(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	// the body is optional
	var opts services.SyncOptions
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
			return
		}
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&opts)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.syncService.Start(opts); err != nil {
		if errors.Is(err, services.ErrSyncInProgress) {
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeySyncInProgress))
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	subject, _ := utils.GetSubjectFromContext(c)
	logrus.WithFields(logrus.Fields{
		"subject":      subject,
		"with_archive": opts.Archive,
		"max_items":    opts.MaxItems,
	}).Info("Sync triggered over HTTP")

	utils.AcceptedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeySyncStarted),
		"options": opts,
	})
}

// GET /v1/admin/sync/status
func (h *AdminHandler) GetSyncStatus(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"status": h.syncService.Status(),
	})
}

// POST /v1/admin/cars/:external_id/import
func (h *AdminHandler) ImportCar(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	externalID := c.Param("external_id")

	if err := utils.ValidateVar(externalID, "advert_id"); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "external_id"), nil)
		return
	}

	car, err := h.importService.Upsert(c.Request.Context(), externalID, time.Now())
	if err != nil {
		if source.IsStatus(err, http.StatusNotFound) {
			utils.NotFoundResponse(c, "car")
			return
		}
		utils.ErrorResponse(c, http.StatusBadGateway, "UPSTREAM_ERROR", err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"car": car,
	})
}
