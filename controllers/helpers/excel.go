package helpers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// NewSheet builds a one-sheet workbook with a bold header row followed by rows.
func NewSheet(sheet string, header []string, rows [][]interface{}) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	for col, title := range header {
		if err := setCell(f, sheet, col+1, 1, title); err != nil {
			f.Close()
			return nil, err
		}
	}
	if len(header) > 0 {
		last, err := excelize.CoordinatesToCellName(len(header), 1)
		if err == nil {
			err = f.SetCellStyle(sheet, "A1", last, headerStyle)
		}
		if err != nil {
			f.Close()
			return nil, err
		}
	}

	for i, row := range rows {
		for col, value := range row {
			if err := setCell(f, sheet, col+1, i+2, value); err != nil {
				f.Close()
				return nil, err
			}
		}
	}
	return f, nil
}

func setCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

// SendWorkbook streams f as an attachment.
func SendWorkbook(ctx *fiber.Ctx, f *excelize.File, filename string) error {
	defer f.Close()

	ctx.Set("Content-Type", xlsxContentType)
	ctx.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := f.Write(ctx.Response().BodyWriter()); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).SendString("Failed to generate Excel")
	}
	return nil
}
