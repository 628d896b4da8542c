package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/co2ledger/internal/app"
	"github.com/neomorfeo/co2ledger/internal/report"
)

type ExportReportInput struct {
	Type string `query:"type" required:"false" default:"all" enum:"all,cylinders,maintenance,fillings,transfers,tank" doc:"Record types to include"`
}

type ExportReportOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

func registerReports(api huma.API, svc *app.LedgerService) {
	huma.Register(api, huma.Operation{
		OperationID: "export-report",
		Method:      http.MethodGet,
		Path:        "/api/v1/reports/export",
		Summary:     "Download the ledger as an xlsx workbook",
		Tags:        []string{"Reports"},
	}, func(ctx context.Context, input *ExportReportInput) (*ExportReportOutput, error) {
		kind, err := report.ParseKind(input.Type)
		if err != nil {
			return nil, toHumaError(err)
		}

		snap, err := svc.Snapshot(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}

		f, err := report.Build(snap, kind)
		if err != nil {
			return nil, toHumaError(err)
		}
		defer f.Close()

		buf, err := f.WriteToBuffer()
		if err != nil {
			return nil, toHumaError(fmt.Errorf("writing workbook: %w", err))
		}

		return &ExportReportOutput{
			ContentType:        report.ContentType,
			ContentDisposition: fmt.Sprintf("attachment; filename=%q", report.FileName(kind, svc.LocalTime())),
			Body:               buf.Bytes(),
		}, nil
	})
}
