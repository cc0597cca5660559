package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ecommerce_api/internal/model"

	"github.com/xuri/excelize/v2"
)

const (
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"

	exportSheet = "Products"
)

var exportHeader = []string{"ID", "SKU", "Name", "Brand", "Category", "Price", "Stock", "Featured", "AverageRating", "ReviewCount", "CreatedAt"}

// ExportProducts renders every product matching filter as CSV or XLSX.
func (s *catalogService) ExportProducts(ctx context.Context, filter model.ProductFilter, format string) (*bytes.Buffer, error) {
	format = strings.ToLower(format)
	if format != ExportFormatCSV && format != ExportFormatXLSX {
		return nil, ErrUnsupportedFormat
	}

	products, err := s.allProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products for export: %w", err)
	}

	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, exportRow(p))
	}

	if format == ExportFormatXLSX {
		return writeXLSX(rows)
	}
	return writeCSV(rows)
}

// allProducts walks the result pages until the reported total is reached.
func (s *catalogService) allProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	filter.Page = 1
	filter.Limit = model.MaxPageLimit
	filter.Normalize()

	var all []model.Product
	for {
		page, total, err := s.products.FindAll(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) == 0 || len(all) >= total || filter.Page >= model.MaxPage {
			return all, nil
		}
		filter.Page++
	}
}

func exportRow(p model.Product) []string {
	var brand string
	if p.Brand != nil {
		brand = *p.Brand
	}
	return []string{
		p.ID,
		p.SKU,
		p.Name,
		brand,
		p.Category.Name,
		strconv.FormatFloat(p.Price, 'f', 2, 64),
		strconv.Itoa(p.Stock),
		strconv.FormatBool(p.IsFeatured),
		strconv.FormatFloat(p.AverageRating, 'f', 1, 64),
		strconv.Itoa(p.ReviewCount),
		p.CreatedAt.Format(time.RFC3339),
	}
}

func writeCSV(rows [][]string) (*bytes.Buffer, error) {
	buffer := &bytes.Buffer{}
	writer := csv.NewWriter(buffer)

	if err := writer.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return buffer, nil
}

func writeXLSX(rows [][]string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write XLSX header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write XLSX row: %w", err)
		}
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode XLSX: %w", err)
	}
	return buffer, nil
}
