package xlsexport

import "github.com/xuri/excelize/v2"

const fontFamily = "Times New Roman"

// sheetWriter построчная запись листа: заголовок таблицы и строки данных
type sheetWriter struct {
	f         *excelize.File
	sheet     string
	row       int
	dataStyle int
}

func newSheetWriter(f *excelize.File, sheet string) (*sheetWriter, error) {
	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "center",
			WrapText:   true,
		},
		Font: &excelize.Font{
			Family: fontFamily,
			Size:   11,
		},
	})
	if err != nil {
		return nil, err
	}
	return &sheetWriter{
		f:         f,
		sheet:     sheet,
		dataStyle: style,
	}, nil
}

func (w *sheetWriter) writeHeader(headers []string, width float64) error {
	w.row++
	style, err := w.f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
		Font: &excelize.Font{
			Bold:   true,
			Family: fontFamily,
			Size:   11,
		},
	})
	if err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err = w.f.SetColWidth(w.sheet, "A", lastCol, width); err != nil {
		return err
	}
	values := make([]interface{}, 0, len(headers))
	for _, header := range headers {
		values = append(values, header)
	}
	if err = w.setRow(values...); err != nil {
		return err
	}
	return w.styleRow(len(headers), style)
}

func (w *sheetWriter) writeRow(values ...interface{}) error {
	w.row++
	if err := w.setRow(values...); err != nil {
		return err
	}
	return w.styleRow(len(values), w.dataStyle)
}

// skipRow пустая строка между блоками
func (w *sheetWriter) skipRow() {
	w.row++
}

func (w *sheetWriter) setRow(values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	return w.f.SetSheetRow(w.sheet, cell, &values)
}

func (w *sheetWriter) styleRow(cols, style int) error {
	cellFirst, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	cellLast, err := excelize.CoordinatesToCellName(cols, w.row)
	if err != nil {
		return err
	}
	return w.f.SetCellStyle(w.sheet, cellFirst, cellLast, style)
}
