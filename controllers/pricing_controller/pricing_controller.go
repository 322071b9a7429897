package pricing_controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/courtbook/courtbook/models/court_models"
	"github.com/courtbook/courtbook/models/pricing_models"
	"github.com/courtbook/courtbook/models/shared_models"
	"github.com/courtbook/courtbook/utils"
)

// PricingService manages pricing rules for courts.
type PricingService struct {
	DB *pgxpool.Pool
}

func NewPricingService(db *pgxpool.Pool) *PricingService {
	return &PricingService{DB: db}
}

// CreateRuleRequest creates one pricing rule. Exactly one of day_of_week and
// date must be set, matching the rule type.
type CreateRuleRequest struct {
	RuleType      string  `json:"rule_type" binding:"required"`
	DayOfWeek     *int16  `json:"day_of_week"`
	Date          *string `json:"date"`
	StartTime     string  `json:"start_time" binding:"required"`
	EndTime       string  `json:"end_time" binding:"required"`
	PricePer30Min float64 `json:"price_per_30_min" binding:"required"`
	IsPeak        bool    `json:"is_peak"`
	Priority      int     `json:"priority"`
}

// CreateRule handles POST /courts/:court_id/pricing-rules.
func (s *PricingService) CreateRule(c *gin.Context) {
	courtID, err := uuid.Parse(c.Param("court_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid court id"})
		return
	}

	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ruleType, err := shared_models.ParseRuleType(req.RuleType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rule_type must be RECURRING or ONE_TIME"})
		return
	}

	var date *time.Time
	switch ruleType {
	case shared_models.RuleRecurring:
		if req.DayOfWeek == nil || req.Date != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "RECURRING rules take day_of_week and no date"})
			return
		}
		if *req.DayOfWeek < 0 || *req.DayOfWeek > 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "day_of_week must be 0 (Monday) through 6 (Sunday)"})
			return
		}
	case shared_models.RuleOneTime:
		if req.Date == nil || req.DayOfWeek != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ONE_TIME rules take date and no day_of_week"})
			return
		}
		d, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		date = &d
	}

	start, err := shared_models.ParseTimeOfDay(req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_time, expected HH:MM"})
		return
	}
	end, err := shared_models.ParseTimeOfDay(req.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_time, expected HH:MM"})
		return
	}
	if start >= end {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_time must be before end_time"})
		return
	}
	if req.PricePer30Min <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price_per_30_min must be positive"})
		return
	}

	actorID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	organizationID, err := utils.GetOrganizationIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organization not resolved"})
		return
	}
	role, err := utils.GetRoleFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	if !utils.CanManageCourts(role) {
		c.JSON(http.StatusNotFound, gin.H{"error": "court not found"})
		return
	}
	if _, err := court_models.GetCourtInOrganization(ctx, s.DB, courtID, organizationID); err != nil {
		utils.RespondError(c, err)
		return
	}
	if !utils.IsSuperAdmin(role) {
		manages, err := court_models.IsCourtManager(ctx, s.DB, courtID, actorID)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		if !manages {
			c.JSON(http.StatusNotFound, gin.H{"error": "court not found"})
			return
		}
	}

	rule := &pricing_models.PricingRule{
		CourtID:        courtID,
		OrganizationID: organizationID,
		RuleType:       ruleType,
		DayOfWeek:      req.DayOfWeek,
		Date:           date,
		StartTime:      start,
		EndTime:        end,
		PricePer30Min:  req.PricePer30Min,
		IsPeak:         req.IsPeak,
		Priority:       req.Priority,
		CreatedBy:      &actorID,
	}
	if _, err := pricing_models.CreatePricingRule(ctx, s.DB, rule); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"rule": rule})
}

// ListRules handles GET /courts/:court_id/pricing-rules.
func (s *PricingService) ListRules(c *gin.Context) {
	courtID, err := uuid.Parse(c.Param("court_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid court id"})
		return
	}
	organizationID, err := utils.GetOrganizationIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organization not resolved"})
		return
	}
	role, err := utils.GetRoleFromContext(c)
	if err != nil || !utils.CanManageCourts(role) {
		c.JSON(http.StatusNotFound, gin.H{"error": "court not found"})
		return
	}

	rules, err := pricing_models.ListPricingRules(c.Request.Context(), s.DB, organizationID, courtID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}
