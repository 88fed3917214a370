package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/frahmantamala/permission-management/internal"
	"github.com/frahmantamala/permission-management/internal/auth"
)

// ExportPDF renders the actor's visible requests as a tabular PDF.
func (s *Service) ExportPDF(actor *auth.Actor, requestedSectorID *int64) ([]byte, error) {
	reqs, err := s.visibleRequests(actor, requestedSectorID)
	if err != nil {
		s.logger.Error("failed to load requests for PDF export", "error", err)
		return nil, err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, "Solicitudes de permiso")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 9)
	headers := []struct {
		label string
		width float64
	}{
		{"Empleado", 50},
		{"Sector", 40},
		{"Tipo", 40},
		{"Desde", 25},
		{"Hasta", 25},
		{"Estado", 25},
		{"Motivo", 70},
	}
	for _, h := range headers {
		pdf.CellFormat(h.width, 7, h.label, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, req := range reqs {
		pdf.CellFormat(50, 6, req.UserName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, req.SectorName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, req.TypeName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, req.StartDate.String(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, req.EndDate.String(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, string(req.Status), "1", 0, "L", false, 0, "")
		pdf.CellFormat(70, 6, truncate(req.Reason, 60), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		s.logger.Error("failed to render PDF export", "error", err)
		return nil, internal.NewInternalError("failed to render PDF export", err)
	}
	return buf.Bytes(), nil
}

// ExportExcel renders the actor's visible requests as an XLSX workbook.
func (s *Service) ExportExcel(actor *auth.Actor, requestedSectorID *int64) ([]byte, error) {
	reqs, err := s.visibleRequests(actor, requestedSectorID)
	if err != nil {
		s.logger.Error("failed to load requests for Excel export", "error", err)
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Solicitudes"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Empleado", "Email", "Sector", "Tipo", "Desde", "Hasta", "Estado", "Motivo", "Motivo de rechazo"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, req := range reqs {
		rejection := ""
		if req.RejectionReason != nil {
			rejection = *req.RejectionReason
		}
		values := []interface{}{
			req.UserName,
			req.UserEmail,
			req.SectorName,
			req.TypeName,
			req.StartDate.String(),
			req.EndDate.String(),
			string(req.Status),
			req.Reason,
			rejection,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("failed to render Excel export", "error", err)
		return nil, internal.NewInternalError("failed to render Excel export", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return fmt.Sprintf("%s…", s[:max])
}
