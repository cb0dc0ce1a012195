package snapshot

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/okian/sleeplab/internal/domain/model"
)

// SheetName is the worksheet holding the derived nights.
const SheetName = "sleep"

// EncodeWorkbook renders the dataset as an xlsx workbook with typed cells:
// numbers stay numeric, missing cells stay blank.
func EncodeWorkbook(ds *model.Dataset) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: create sheet: %w", ErrEncode, err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("%w: drop default sheet: %w", ErrEncode, err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: header style: %w", ErrEncode, err)
	}

	cols := model.NightColumns()
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c.Name
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrEncode, err)
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("%w: header style: %w", ErrEncode, err)
	}

	rows := ds.Rows()
	for r := range rows {
		values := make([]any, len(cols))
		for i, c := range cols {
			values[i] = cellValue(c, &rows[r])
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncode, err)
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrEncode, r+2, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze: true, XSplit: 1, YSplit: 1, TopLeftCell: "B2", ActivePane: "bottomRight",
	}); err != nil {
		return nil, fmt.Errorf("%w: panes: %w", ErrEncode, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

func cellValue(c model.Column, r *model.NightRow) any {
	switch c.Kind {
	case model.KindNumber:
		if v := c.Number(r); v.Valid {
			return v.Value
		}
		return nil
	case model.KindBool:
		return r.WeekEven
	default:
		return c.Text(r)
	}
}

// StageWorkbook encodes the workbook export of a dataset.
func StageWorkbook(ds *model.Dataset, path string) (File, error) {
	data, err := EncodeWorkbook(ds)
	if err != nil {
		return File{}, err
	}
	return File{Kind: KindWorkbook, Path: path, Data: data}, nil
}
