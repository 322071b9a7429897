package schedule_controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/courtbook/courtbook/models/availability_models"
	"github.com/courtbook/courtbook/models/court_models"
	"github.com/courtbook/courtbook/models/shared_models"
	"github.com/courtbook/courtbook/utils"
)

// ScheduleService manages recurring availability and date overrides.
type ScheduleService struct {
	DB *pgxpool.Pool
}

func NewScheduleService(db *pgxpool.Pool) *ScheduleService {
	return &ScheduleService{DB: db}
}

// authorizeCourt checks the actor may manage the court: the court must exist
// in the organization, and non-admin managers must be assigned to it.
func (s *ScheduleService) authorizeCourt(ctx context.Context, courtID, organizationID, actorID uuid.UUID, role shared_models.Role) error {
	if !utils.CanManageCourts(role) {
		return &utils.NotFoundError{Resource: "court"}
	}
	if _, err := court_models.GetCourtInOrganization(ctx, s.DB, courtID, organizationID); err != nil {
		return err
	}
	if utils.IsSuperAdmin(role) {
		return nil
	}
	manages, err := court_models.IsCourtManager(ctx, s.DB, courtID, actorID)
	if err != nil {
		return err
	}
	if !manages {
		return &utils.NotFoundError{Resource: "court"}
	}
	return nil
}

// SetRecurringRequest sets the weekly window for one day.
type SetRecurringRequest struct {
	DayOfWeek *int16 `json:"day_of_week" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

// SetRecurringAvailability handles PUT /courts/:court_id/availability/recurring.
// Replaces the existing windows for the day rather than appending.
func (s *ScheduleService) SetRecurringAvailability(c *gin.Context) {
	courtID, err := uuid.Parse(c.Param("court_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid court id"})
		return
	}

	var req SetRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if *req.DayOfWeek < 0 || *req.DayOfWeek > 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day_of_week must be 0 (Monday) through 6 (Sunday)"})
		return
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
	if err := s.authorizeCourt(ctx, courtID, organizationID, actorID, role); err != nil {
		utils.RespondError(c, err)
		return
	}

	recurring, err := availability_models.ReplaceRecurring(ctx, s.DB, courtID, *req.DayOfWeek, start, end)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"availability": recurring})
}

// SetOverrideRequest creates or replaces a date override.
type SetOverrideRequest struct {
	Date         string  `json:"date" binding:"required"`
	OverrideType string  `json:"override_type" binding:"required"`
	StartTime    *string `json:"start_time"`
	EndTime      *string `json:"end_time"`
	Reason       *string `json:"reason"`
}

// SetDateOverride handles PUT /courts/:court_id/availability/overrides.
func (s *ScheduleService) SetDateOverride(c *gin.Context) {
	courtID, err := uuid.Parse(c.Param("court_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid court id"})
		return
	}

	var req SetOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}
	overrideType, err := shared_models.ParseOverrideType(req.OverrideType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "override_type must be OPEN or CLOSE"})
		return
	}

	var start, end *shared_models.TimeOfDay
	if overrideType == shared_models.OverrideOpen {
		if req.StartTime == nil || req.EndTime == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "OPEN override requires start_time and end_time"})
			return
		}
		st, err := shared_models.ParseTimeOfDay(*req.StartTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_time, expected HH:MM"})
			return
		}
		et, err := shared_models.ParseTimeOfDay(*req.EndTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_time, expected HH:MM"})
			return
		}
		if st >= et {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_time must be before end_time"})
			return
		}
		start, end = &st, &et
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
	if err := s.authorizeCourt(ctx, courtID, organizationID, actorID, role); err != nil {
		utils.RespondError(c, err)
		return
	}

	override, err := availability_models.UpsertDateOverride(ctx, s.DB, &availability_models.DateOverride{
		CourtID:      courtID,
		Date:         date,
		OverrideType: overrideType,
		StartTime:    start,
		EndTime:      end,
		Reason:       req.Reason,
		CreatedBy:    &actorID,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"override": override})
}
