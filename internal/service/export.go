package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"jobboard/internal/apperr"
	"jobboard/internal/models"
)

// ExportApplicationsExcel builds an .xlsx of every application submitted to
// the company's jobs on the given day. Owner or HR only.
func (s *CompanyService) ExportApplicationsExcel(ctx context.Context, actor models.User, companyID string, day time.Time) ([]byte, string, error) {
	company, err := s.getLive(ctx, companyID)
	if err != nil {
		return nil, "", err
	}
	if !company.IsOwner(actor.ID) && !company.IsHR(actor.ID) {
		return nil, "", apperr.Forbidden("not authorized")
	}

	apps, err := s.apps.ListByCompanyAndDay(ctx, companyID, day)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	const sheet = "Applications"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Application ID", "Job Title", "Applicant Name", "Applicant Email", "Status", "Applied At"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, "", err
		}
	}

	for row, app := range apps {
		values := []any{
			app.ID,
			app.JobTitle,
			app.ApplicantName,
			app.ApplicantEmail,
			string(app.Status),
			app.CreatedAt.Format(time.RFC3339),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, "", err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("write workbook: %w", err)
	}

	filename := fmt.Sprintf("applications_%s_%s.xlsx", companyID, day.Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}
