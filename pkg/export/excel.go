// Package export renders documents as XLSX workbooks, the interchange
// format quality teams actually pass around.
package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/tracewright/apqp-engine/pkg/models"
)

// ControlPlanWorkbook renders a control plan, one row per item.
func ControlPlanWorkbook(plan *models.ControlPlan, items []*models.ControlPlanItem) (*excelize.File, error) {
	headers := []string{"No", "Process Step", "Control Type", "Control Method", "Specification", "Sample Size", "Frequency", "Reaction Plan"}
	data := make([][]string, 0, len(items))
	for i, item := range items {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			item.ProcessStep,
			string(item.ControlType),
			item.ControlMethod,
			item.Specification,
			item.SampleSize,
			item.Frequency,
			item.ReactionPlan,
		})
	}
	return workbook("ControlPlan", docTitle(plan.DocNumber, plan.Revision, plan.Status), headers, data)
}

// InspectionStandardWorkbook renders an inspection standard, one row per
// inspection item.
func InspectionStandardWorkbook(std *models.InspectionStandard, items []*models.InspectionItem) (*excelize.File, error) {
	headers := []string{"No", "Inspection Name", "Acceptance Criteria", "Inspection Method", "Sample Size", "Frequency"}
	data := make([][]string, 0, len(items))
	for _, item := range items {
		data = append(data, []string{
			strconv.Itoa(item.ItemNumber),
			item.InspectionName,
			item.AcceptanceCriteria,
			item.InspectionMethod,
			item.SampleSize,
			item.Frequency,
		})
	}
	return workbook("InspectionStandard", docTitle(std.DocNumber, std.Revision, std.Status), headers, data)
}

// ConsistencyReportWorkbook renders a consistency check result, one row
// per issue.
func ConsistencyReportWorkbook(issues []models.Issue, summary models.IssueSummary) (*excelize.File, error) {
	headers := []string{"Severity", "Rule", "Description", "Message"}
	data := make([][]string, 0, len(issues))
	for _, issue := range issues {
		data = append(data, []string{
			string(issue.Severity),
			string(issue.RuleCode),
			models.RuleDescriptions[issue.RuleCode],
			issue.Message,
		})
	}
	title := fmt.Sprintf("Consistency Report - HIGH %d / MEDIUM %d / LOW %d",
		summary.High, summary.Medium, summary.Low)
	return workbook("Consistency", title, headers, data)
}

func docTitle(docNumber, revision string, status models.DocumentStatus) string {
	return fmt.Sprintf("%s Rev.%s (%s)", docNumber, revision, status)
}

// workbook builds a single-sheet file: title row, bold header row, data
// rows.
func workbook(sheetName, title string, headers []string, data [][]string) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetCellValue(sheetName, "A1", title); err != nil {
		return nil, fmt.Errorf("write title: %w", err)
	}

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return nil, fmt.Errorf("header cell name: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("style header: %w", err)
		}
	}

	for rowIdx, row := range data {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+3)
			if err != nil {
				return nil, fmt.Errorf("data cell name: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("write cell: %w", err)
			}
		}
	}

	for i := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(sheetName, col, col, 20); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	return f, nil
}
