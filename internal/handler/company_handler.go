package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-service/internal/apperr"
	"inventory-service/internal/model"
	"inventory-service/pkg/database"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"
)

// CompanyRequest defines the structure for company creation requests
type CompanyRequest struct {
	INN         string `json:"inn"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (r *CompanyRequest) validate() error {
	if len(r.INN) != model.INNLength {
		return apperr.Validation("inn must be exactly %d characters", model.INNLength)
	}
	if r.Title == "" {
		return apperr.Validation("title is required")
	}
	return nil
}

// CreateCompany registers a new tenant. The creating user becomes its owner;
// re-issuing a token with the new company claim is the auth service's job.
func CreateCompany(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}

	var req CompanyRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := req.validate(); err != nil {
		return respondError(c, log, err)
	}

	if actor.IsOwner {
		return respondError(c, log, apperr.Forbidden("user already owns a company"))
	}

	var count int64
	if result := database.GetDB().Model(&model.Company{}).
		Where("inn = ?", req.INN).Count(&count); result.Error != nil {
		log.Error("Failed to check INN uniqueness", zap.Error(result.Error))
		return respondError(c, log, result.Error)
	}
	if count > 0 {
		log.Warn("Company with this INN already exists", zap.String("inn", req.INN))
		return respondError(c, log, apperr.Conflict("company with this INN already exists"))
	}

	company := model.Company{
		INN:         req.INN,
		Title:       req.Title,
		Description: req.Description,
	}
	if result := database.GetDB().Create(&company); result.Error != nil {
		log.Error("Failed to create company", zap.Error(result.Error))
		return respondError(c, log, result.Error)
	}

	prometheus.RecordCatalogOperation("company", "create")
	log.Info("Company created successfully",
		zap.Uint("company_id", company.ID),
		zap.String("title", company.Title),
		zap.Uint("owner_user_id", actor.UserID))
	return c.JSON(http.StatusCreated, company)
}

// GetCompany returns the caller's own company
func GetCompany(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return respondError(c, log, err)
	}
	if id != actor.CompanyID {
		return respondError(c, log, apperr.NotFound("company"))
	}

	var company model.Company
	if result := database.GetDB().First(&company, id); result.Error != nil {
		log.Warn("Company not found", zap.Uint("company_id", id))
		return respondError(c, log, apperr.NotFound("company"))
	}

	return c.JSON(http.StatusOK, company)
}
