package user

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/xuri/excelize/v2"
)

// BulkRow is one spreadsheet line of a user import. SectorID is kept as the
// raw cell text so a bad value can be reported per row instead of failing
// the parse.
type BulkRow struct {
	Email    string
	Name     string
	Password string
	Role     string
	SectorID string
}

var ErrUnsupportedFormat = errors.New("unsupported file format: accepted formats are CSV, XLSX and XLS")

// ParseBulkFile decodes a CSV or Excel upload into rows. The first row must
// be a header containing at least email, name and password columns.
func ParseBulkFile(filename string, data []byte) ([]BulkRow, error) {
	ext := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(ext, ".csv"):
		return parseCSV(data)
	case strings.HasSuffix(ext, ".xlsx"), strings.HasSuffix(ext, ".xls"):
		return parseExcel(data)
	}
	return nil, ErrUnsupportedFormat
}

func parseCSV(data []byte) ([]BulkRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	var rows []BulkRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		rows = append(rows, rowFromRecord(record, index))
	}
	return rows, nil
}

func parseExcel(data []byte) ([]BulkRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("spreadsheet has no sheets")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("spreadsheet is empty")
	}

	index, err := headerIndex(records[0])
	if err != nil {
		return nil, err
	}

	rows := make([]BulkRow, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, rowFromRecord(record, index))
	}
	return rows, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	var missing []string
	for _, required := range []string{"email", "name", "password"} {
		if _, ok := index[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

func rowFromRecord(record []string, index map[string]int) BulkRow {
	cell := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	return BulkRow{
		Email:    cell("email"),
		Name:     cell("name"),
		Password: cell("password"),
		Role:     cell("role"),
		SectorID: cell("sectorid"),
	}
}

// BulkImport creates one user per row, accumulating per-row failures. Line
// numbers start at 2 to account for the header row, matching what the person
// who prepared the spreadsheet sees.
func (s *Service) BulkImport(filename string, data []byte) (*BulkImportResult, error) {
	rows, err := ParseBulkFile(filename, data)
	if err != nil {
		return nil, err
	}

	result := &BulkImportResult{Message: "bulk import completed"}

	for i, row := range rows {
		lineNumber := i + 2
		if err := s.importRow(row); err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", lineNumber, err))
			continue
		}
		result.SuccessCount++
	}

	result.TotalProcessed = result.SuccessCount + result.ErrorCount
	s.logger.Info("bulk user import finished",
		"total", result.TotalProcessed,
		"succeeded", result.SuccessCount,
		"failed", result.ErrorCount)
	return result, nil
}

func (s *Service) importRow(row BulkRow) error {
	if row.Email == "" || row.Name == "" || row.Password == "" {
		return errors.New("email, name and password are required")
	}

	role := RoleEmployee
	if row.Role != "" {
		parsed, err := ParseRole(row.Role)
		if err != nil {
			return err
		}
		role = parsed
	}

	var sectorID *int64
	if role != RoleHR && row.SectorID != "" {
		id, err := strconv.ParseInt(row.SectorID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid sector id %q", row.SectorID)
		}
		ok, err := s.sectors.Exists(id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("sector with id %d not found", id)
		}
		sectorID = &id
	}

	assignment, err := NormalizeSectorAssignment(role, sectorID, nil)
	if err != nil {
		return err
	}

	if existing, _ := s.repo.GetByEmail(row.Email); existing != nil {
		return fmt.Errorf("user with email %s already exists", row.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(row.Password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.Create(&User{
		Email:           row.Email,
		Name:            row.Name,
		PasswordHash:    string(hash),
		Role:            role,
		SectorID:        assignment.SectorID,
		ManagedSectorID: assignment.ManagedSectorID,
	})
}
