package pdfexport

import (
	"bytes"
	xlsexport "docflow-backend/lib/export/xls"
	votingapimodels "docflow-backend/models/api/voting"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
)

const fontName = "Arial"

// GenerateVotingProtocol протокол голосования. В fontDir должны лежать Arial.ttf и "Arial Bold.ttf".
func GenerateVotingProtocol(fontDir string, view votingapimodels.VotingView) (pdfFile []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("GenerateVotingProtocol panic recover: %v", r)
		}
	}()
	pdf := fpdf.New("P", "mm", "A4", fontDir)
	pdf.AddUTF8Font(fontName, "", "Arial.ttf")
	pdf.AddUTF8Font(fontName, "B", "Arial Bold.ttf")
	if pdf.Error() != nil {
		return nil, errors.Wrap(pdf.Error(), "ошибка загрузки шрифтов")
	}
	pdf.AddPage()

	pdf.SetFont(fontName, "B", 16)
	pdf.CellFormat(0, 10, "Протокол голосования", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(fontName, "", 11)
	for _, item := range xlsexport.VotingSummary(view) {
		pdf.CellFormat(60, 7, item[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, item[1], "1", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, "Участники", "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 11)
	for _, line := range participantLines(view) {
		pdf.MultiCell(0, 6, line, "", "L", false)
	}

	if pdf.Error() != nil {
		return nil, pdf.Error()
	}
	buf := new(bytes.Buffer)
	err = pdf.Output(buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func participantLines(view votingapimodels.VotingView) []string {
	lines := make([]string, 0, len(view.Requests))
	for n, req := range view.Requests {
		line := fmt.Sprintf("%d. %s: %s", n+1, req.UserName, req.StatusName)
		if req.Comment != "" {
			line += fmt.Sprintf(" (%s)", req.Comment)
		}
		lines = append(lines, line)
	}
	return lines
}
