package handlers

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/fuellog/internal/domain/fueling"
	"github.com/geocoder89/fuellog/internal/observability"
	"github.com/geocoder89/fuellog/internal/photos"
	"github.com/geocoder89/fuellog/internal/report"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type RecordReporter interface {
	Records(c report.Criteria) ([]fueling.Record, bool)
}

type RecordGetter interface {
	GetByID(id string) (fueling.Record, error)
}

type ReportCacheRecorder interface {
	ObserveReportCache(hit bool)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminRecordsHandler struct {
	reports RecordReporter
	records RecordGetter
	loc     *time.Location
	metrics ReportCacheRecorder
	log     *slog.Logger
	now     func() time.Time
}

func NewAdminRecordsHandler(reports RecordReporter, records RecordGetter, loc *time.Location, metrics ReportCacheRecorder, log *slog.Logger) *AdminRecordsHandler {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}
	return &AdminRecordsHandler{
		reports: reports,
		records: records,
		loc:     loc,
		metrics: metrics,
		log:     log,
		now:     time.Now,
	}
}

// filtered resolves ?driver=&startDate=&endDate= and runs the report filter.
func (h *AdminRecordsHandler) filtered(ctx *gin.Context) (report.Criteria, []fueling.Record, bool) {
	c, err := report.ParseCriteria(
		ctx.Query("driver"),
		ctx.Query("startDate"),
		ctx.Query("endDate"),
		h.loc,
	)
	if err != nil {
		RespondBadRequest(ctx, "Invalid report filter", gin.H{"reason": err.Error()})
		return report.Criteria{}, nil, false
	}

	records, hit := h.reports.Records(c)
	if h.metrics != nil {
		h.metrics.ObserveReportCache(hit)
	}
	return c, records, true
}

func (h *AdminRecordsHandler) List(ctx *gin.Context) {
	c, records, ok := h.filtered(ctx)
	if !ok {
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"records": records,
		"count":   len(records),
		"filter": gin.H{
			"driver":    c.DriverID,
			"startDate": c.Start,
			"endDate":   c.End,
		},
	})
}

func (h *AdminRecordsHandler) ExportCSV(ctx *gin.Context) {
	h.export(ctx, "csv", "text/csv; charset=utf-8", report.WriteCSV)
}

func (h *AdminRecordsHandler) ExportXLSX(ctx *gin.Context) {
	h.export(ctx, "xlsx", xlsxContentType, report.WriteXLSX)
}

type writeFunc func(w io.Writer, records []fueling.Record, loc *time.Location) error

func (h *AdminRecordsHandler) export(ctx *gin.Context, ext, contentType string, write writeFunc) {
	_, records, ok := h.filtered(ctx)
	if !ok {
		return
	}

	spanCtx, span := observability.Tracer().Start(ctx.Request.Context(), "report.export")
	defer span.End()
	span.SetAttributes(
		attribute.String("report.format", ext),
		attribute.Int("report.rows", len(records)),
	)

	// buffer first so a failed export still gets a proper error response
	var buf bytes.Buffer
	if err := write(&buf, records, h.loc); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "export failed")
		h.log.ErrorContext(spanCtx, "report export failed", "format", ext, "err", err)
		RespondInternal(ctx, "Could not build report")
		return
	}

	name := report.FileName(h.now(), ext)
	ctx.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	ctx.Data(http.StatusOK, contentType, buf.Bytes())
}

// Photo serves the stored image of one record. kind is dashboard or pump.
func (h *AdminRecordsHandler) Photo(ctx *gin.Context) {
	rec, err := h.records.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, fueling.ErrNotFound) {
			RespondNotFound(ctx, "Record not found")
			return
		}
		RespondInternal(ctx, "Could not load record")
		return
	}

	var p fueling.PhotoData
	switch ctx.Param("kind") {
	case "dashboard":
		p = rec.DashboardPhoto
	case "pump":
		p = rec.PumpPhoto
	default:
		RespondNotFound(ctx, "Unknown photo kind")
		return
	}

	mime, b, err := photos.Decode(p.Base64)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "stored photo is unreadable", "record_id", rec.ID, "err", err)
		RespondInternal(ctx, "Could not read photo")
		return
	}

	ctx.Header("Last-Modified", p.Timestamp.UTC().Format(http.TimeFormat))
	ctx.Data(http.StatusOK, mime, b)
}
