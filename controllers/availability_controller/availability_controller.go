package availability_controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/courtbook/courtbook/models/booking_models"
	"github.com/courtbook/courtbook/models/court_models"
	"github.com/courtbook/courtbook/models/pricing_models"
	"github.com/courtbook/courtbook/models/shared_models"
	"github.com/courtbook/courtbook/utils"
)

// AvailabilityService serves the public slot listing.
type AvailabilityService struct {
	DB *pgxpool.Pool
}

func NewAvailabilityService(db *pgxpool.Pool) *AvailabilityService {
	return &AvailabilityService{DB: db}
}

// PricedSlot is a free 30-minute slot with its resolved price.
type PricedSlot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Price     float64   `json:"price"`
	IsPeak    bool      `json:"is_peak"`
}

// GetAvailability handles GET /courts/:court_id/availability?date=YYYY-MM-DD.
// Slots no pricing rule covers are omitted: an unpriced slot is not sellable.
func (s *AvailabilityService) GetAvailability(c *gin.Context) {
	courtID, err := uuid.Parse(c.Param("court_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid court id"})
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required as YYYY-MM-DD"})
		return
	}

	ctx := c.Request.Context()
	court, err := court_models.GetCourtByID(ctx, s.DB, courtID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !court.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "court not found"})
		return
	}

	slots, err := booking_models.AvailableSlots(ctx, s.DB, courtID, date, shared_models.SlotMinutes)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	rules, err := pricing_models.RulesForDate(ctx, s.DB, courtID, date)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	priced := make([]PricedSlot, 0, len(slots))
	for _, slot := range slots {
		rule := pricing_models.PickApplicableRule(rules, shared_models.FromClock(slot.StartTime))
		if rule == nil {
			continue
		}
		priced = append(priced, PricedSlot{
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			Price:     rule.PricePer30Min,
			IsPeak:    rule.IsPeak,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"court_id": courtID,
		"date":     date.Format("2006-01-02"),
		"slots":    priced,
	})
}

// ListVenueCourts handles GET /venues/:venue_id/courts, the public listing
// of a venue's bookable courts within the resolved tenant.
func (s *AvailabilityService) ListVenueCourts(c *gin.Context) {
	venueID, err := uuid.Parse(c.Param("venue_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid venue id"})
		return
	}
	organizationID, err := utils.GetOrganizationIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organization not resolved"})
		return
	}

	ctx := c.Request.Context()
	venue, err := court_models.GetVenueByID(ctx, s.DB, venueID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if venue.OrganizationID != organizationID || !venue.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "venue not found"})
		return
	}

	courts, err := court_models.ListCourtsForVenue(ctx, s.DB, venueID, organizationID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"venue": venue, "courts": courts})
}
