// Package sheets reads and rewrites the first worksheet of a Google
// Spreadsheet through the Sheets API v4.
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	apperrors "sheetclean/internal/errors"
	"sheetclean/internal/table"
)

// TracerName is the instrumentation name of the client's spans
const TracerName = "sheetclean/sheets"

// ErrEmptySheet is returned when the first worksheet has no header row
var ErrEmptySheet = errors.New("worksheet has no header row")

// Client talks to one spreadsheet
type Client struct {
	service *sheetsapi.Service
	sheetID string
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewFromCredentials authenticates with a service-account JSON document
func NewFromCredentials(ctx context.Context, credentials []byte, sheetID string, logger *slog.Logger) (*Client, error) {
	if len(credentials) == 0 || !json.Valid(credentials) {
		return nil, apperrors.NewConfigError("malformed service account credentials", nil)
	}
	return New(ctx, sheetID, logger,
		option.WithCredentialsJSON(credentials),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
}

// New creates a client from explicit client options
func New(ctx context.Context, sheetID string, logger *slog.Logger, opts ...option.ClientOption) (*Client, error) {
	if sheetID == "" {
		return nil, apperrors.NewConfigError("spreadsheet ID is empty", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	service, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to create sheets service", err)
	}

	return &Client{
		service: service,
		sheetID: sheetID,
		logger:  logger,
		tracer:  otel.Tracer(TracerName),
	}, nil
}

// ReadTable reads every row of the first worksheet. The first row is the
// header; shorter rows are padded with missing cells.
func (c *Client) ReadTable(ctx context.Context) (*table.Table, error) {
	var t *table.Table
	err := c.traceOperation(ctx, "read", func(ctx context.Context) error {
		title, err := c.firstSheetTitle(ctx)
		if err != nil {
			return err
		}

		resp, err := c.service.Spreadsheets.Values.Get(c.sheetID, quoteTitle(title)).
			ValueRenderOption("UNFORMATTED_VALUE").
			Context(ctx).
			Do()
		if err != nil {
			return c.networkError("failed to read worksheet", err).WithContext("sheet", title)
		}

		records := toRecords(resp.Values)
		if len(records) == 0 {
			return apperrors.NewParsingError("worksheet is empty", ErrEmptySheet).WithContext("sheet", title)
		}

		t, err = table.FromRecords(records[0], records[1:])
		if err != nil {
			return apperrors.NewParsingError("failed to parse worksheet rows", err).WithContext("sheet", title)
		}

		c.logger.InfoContext(ctx, "Worksheet read",
			slog.String("sheet", title),
			slog.Int("rows", t.NumRows()),
			slog.Int("columns", t.NumColumns()))
		return nil
	})
	return t, err
}

// ReplaceTable clears the first worksheet and writes the header and all rows
// of t starting at A1.
func (c *Client) ReplaceTable(ctx context.Context, t *table.Table) error {
	return c.traceOperation(ctx, "replace", func(ctx context.Context) error {
		title, err := c.firstSheetTitle(ctx)
		if err != nil {
			return err
		}
		rng := quoteTitle(title)

		if _, err := c.service.Spreadsheets.Values.Clear(c.sheetID, rng, &sheetsapi.ClearValuesRequest{}).
			Context(ctx).
			Do(); err != nil {
			return c.networkError("failed to clear worksheet", err).WithContext("sheet", title)
		}

		header := make([]interface{}, 0, t.NumColumns())
		for _, name := range t.Header() {
			header = append(header, name)
		}
		values := append([][]interface{}{header}, t.Values()...)

		resp, err := c.service.Spreadsheets.Values.Update(c.sheetID, rng+"!A1", &sheetsapi.ValueRange{Values: values}).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		if err != nil {
			return c.networkError("failed to write worksheet", err).WithContext("sheet", title)
		}

		c.logger.InfoContext(ctx, "Worksheet replaced",
			slog.String("sheet", title),
			slog.Int64("updated_rows", resp.UpdatedRows),
			slog.Int64("updated_cells", resp.UpdatedCells))
		return nil
	})
}

func (c *Client) firstSheetTitle(ctx context.Context) (string, error) {
	resp, err := c.service.Spreadsheets.Get(c.sheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return "", c.networkError("failed to fetch spreadsheet metadata", err)
	}
	if len(resp.Sheets) == 0 || resp.Sheets[0].Properties == nil {
		return "", apperrors.NewParsingError("spreadsheet has no worksheets", nil).WithContext("sheet_id", c.sheetID)
	}
	return resp.Sheets[0].Properties.Title, nil
}

// traceOperation wraps a Sheets call in a span
func (c *Client) traceOperation(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	ctx, span := c.tracer.Start(ctx, "sheets."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("sheets.operation", operation),
			attribute.String("component", "sheets_client"),
		),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	span.SetAttributes(
		attribute.Float64("sheets.duration_ms", float64(time.Since(start).Milliseconds())),
		attribute.Bool("sheets.success", err == nil),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return err
}

func (c *Client) networkError(message string, err error) *apperrors.AppError {
	appErr := apperrors.NewNetworkError(message, err).WithContext("sheet_id", c.sheetID)
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		appErr = appErr.WithContext("status_code", apiErr.Code)
	}
	return appErr
}

// quoteTitle renders a worksheet title as an A1 range that covers the
// whole sheet.
func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// toRecords converts unformatted API values into strings the table parser
// understands. Trailing empty rows are dropped.
func toRecords(values [][]interface{}) [][]string {
	records := make([][]string, 0, len(values))
	for _, row := range values {
		record := make([]string, len(row))
		for j, v := range row {
			record[j] = cellString(v)
		}
		records = append(records, record)
	}
	for len(records) > 0 && len(records[len(records)-1]) == 0 {
		records = records[:len(records)-1]
	}
	return records
}

func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return table.FormatNumber(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
