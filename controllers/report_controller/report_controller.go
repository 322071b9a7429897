package report_controller

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xuri/excelize/v2"

	"github.com/courtbook/courtbook/models/booking_models"
	"github.com/courtbook/courtbook/models/court_models"
	"github.com/courtbook/courtbook/models/shared_models"
	"github.com/courtbook/courtbook/utils"
)

// ReportService serves the manager-facing booking list and its XLSX export.
type ReportService struct {
	DB *pgxpool.Pool
}

func NewReportService(db *pgxpool.Pool) *ReportService {
	return &ReportService{DB: db}
}

// parseFilter reads the optional court_id, status, and date query params.
func parseFilter(c *gin.Context) (booking_models.BookingFilter, error) {
	var f booking_models.BookingFilter
	if v := c.Query("court_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, utils.Validationf("invalid court_id")
		}
		f.CourtID = &id
	}
	if v := c.Query("status"); v != "" {
		status, err := shared_models.ParseBookingStatus(v)
		if err != nil {
			return f, utils.Validationf("invalid status")
		}
		f.Status = &status
	}
	if v := c.Query("date"); v != "" {
		date, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, utils.Validationf("invalid date, expected YYYY-MM-DD")
		}
		f.Date = &date
	}
	return f, nil
}

func (s *ReportService) authorize(c *gin.Context) (uuid.UUID, bool) {
	role, err := utils.GetRoleFromContext(c)
	if err != nil || !utils.CanManageCourts(role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "manager access required"})
		return uuid.Nil, false
	}
	organizationID, err := utils.GetOrganizationIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organization not resolved"})
		return uuid.Nil, false
	}
	return organizationID, true
}

// ListBookings handles GET /manage/bookings.
func (s *ReportService) ListBookings(c *gin.Context) {
	organizationID, ok := s.authorize(c)
	if !ok {
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	bookings, err := booking_models.ListBookings(c.Request.Context(), s.DB, organizationID, filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// ListManagedCourts handles GET /manage/courts.
func (s *ReportService) ListManagedCourts(c *gin.Context) {
	if _, ok := s.authorize(c); !ok {
		return
	}
	managerID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	courts, err := court_models.ListManagedCourts(c.Request.Context(), s.DB, managerID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courts": courts})
}

// ExportBookings handles GET /manage/bookings/export, streaming an XLSX of
// the filtered booking list.
func (s *ReportService) ExportBookings(c *gin.Context) {
	organizationID, ok := s.authorize(c)
	if !ok {
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	bookings, err := booking_models.ListBookings(c.Request.Context(), s.DB, organizationID, filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	buf, err := bookingsToExcel(bookings)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	fileName := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func bookingsToExcel(bookings []booking_models.Booking) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Bookings"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"Booking ID", "Court ID", "Start", "End", "Price", "Status", "Invoice"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	_ = f.SetCellStyle(sheet, "A1", "G1", headerStyle)

	for i, b := range bookings {
		row := i + 2
		invoiceNumber := ""
		if b.InvoiceNumber != nil {
			invoiceNumber = *b.InvoiceNumber
		}
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), b.ID.String())
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), b.CourtID.String())
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), b.StartTime.Format("02.01.2006 15:04"))
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), b.EndTime.Format("02.01.2006 15:04"))
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), b.TotalPrice)
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), string(b.Status))
		_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", row), invoiceNumber)
	}

	_ = f.SetColWidth(sheet, "A", "B", 38)
	_ = f.SetColWidth(sheet, "C", "D", 18)
	_ = f.SetColWidth(sheet, "E", "G", 14)
	_ = f.DeleteSheet("Sheet1")

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}
	return &buf, nil
}
