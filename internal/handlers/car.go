// internal/handlers/car.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/autoimport/internal/i18n"
	"github.com/javajoker/autoimport/internal/services"
	"github.com/javajoker/autoimport/internal/utils"
)

type CarHandler struct {
	carService *services.CarService
}

func NewCarHandler(carService *services.CarService) *CarHandler {
	return &CarHandler{
		carService: carService,
	}
}

// GET /v1/cars
func (h *CarHandler) GetCars(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var searchParams services.CarSearchParams
	if err := c.ShouldBindQuery(&searchParams); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "query"), err.Error())
		return
	}
	searchParams.PaginationParams = utils.GetPaginationParams(c)

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&searchParams)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	cars, total, err := h.carService.SearchCars(searchParams)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(cars, total, searchParams.PaginationParams)
	utils.PaginatedResponse(c, result)
}

// GET /v1/cars/:id
func (h *CarHandler) GetCar(c *gin.Context) {
	// an id that cannot exist is simply not found
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.NotFoundResponse(c, "car")
		return
	}

	car, err := h.carService.GetCar(id)
	if err != nil {
		if errors.Is(err, services.ErrCarNotFound) {
			utils.NotFoundResponse(c, "car")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"car":          car,
		"main_photo":   car.MainPhoto(),
		"year_display": car.YearDisplay(),
	})
}

// GET /v1/filters
func (h *CarHandler) GetFilters(c *gin.Context) {
	filters, err := h.carService.GetFilters(utils.GetLangFromContext(c))
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"filters": filters,
	})
}
