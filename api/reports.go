package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-timesheets-client/transport"
)

type Reports struct {
	sender Sender
}

// Summarize totals minutes per project over the date range.
func (r *Reports) Summarize(ctx context.Context, filters ReportFilters) (*ReportResponse, error) {
	if err := validateDateRange(filters.DateFrom, filters.DateTo); err != nil {
		return nil, err
	}
	var report ReportResponse
	req := transport.Request{Method: http.MethodPost, Path: RouteReportSummary}
	if err := call(ctx, r.sender, req, filters, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// RequestExport queues an export; the server answers 202 and the export is
// produced in the background. Format defaults to csv.
func (r *Reports) RequestExport(ctx context.Context, export ExportRequest) (*ReportExport, error) {
	if err := validateDateRange(export.DateFrom, export.DateTo); err != nil {
		return nil, err
	}
	switch export.Format {
	case "":
		export.Format = ExportCSV
	case ExportCSV, ExportPDF:
	default:
		return nil, invalid("export format %q is not csv or pdf", export.Format)
	}

	var out ReportExport
	req := transport.Request{Method: http.MethodPost, Path: RouteReportExport}
	if err := call(ctx, r.sender, req, export, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Reports) ListExports(ctx context.Context) ([]ReportExport, error) {
	var exports []ReportExport
	req := transport.Request{Method: http.MethodGet, Path: RouteReportExports}
	if err := call(ctx, r.sender, req, nil, &exports); err != nil {
		return nil, err
	}
	return exports, nil
}

func (r *Reports) GetExport(ctx context.Context, id int64) (*ReportExport, error) {
	var export ReportExport
	req := transport.Request{Method: http.MethodGet, Path: fmt.Sprintf(RouteReportExportN, id)}
	if err := call(ctx, r.sender, req, nil, &export); err != nil {
		return nil, err
	}
	return &export, nil
}
