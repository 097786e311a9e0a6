package handlers

import (
	"context"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/geocoder89/fuellog/internal/domain/fueling"
	"github.com/geocoder89/fuellog/internal/domain/user"
	"github.com/geocoder89/fuellog/internal/http/middlewares"
	"github.com/geocoder89/fuellog/internal/photos"
	"github.com/geocoder89/fuellog/internal/report"
	"github.com/geocoder89/fuellog/internal/session"
	"github.com/gin-gonic/gin"
)

type RecordStore interface {
	Add(driver user.User, data fueling.NewRecord) (fueling.Record, bool)
	ForDriver(driverID string) []fueling.Record
}

// ActiveSessions resolves the session a request was authenticated with. It
// answers false once another login has replaced it.
type ActiveSessions interface {
	Get(id string) (session.Session, bool)
}

type SubmissionNotifier interface {
	RecordSubmitted(ctx context.Context, driverName, plate string)
	ScheduleReview(driverID, plate string)
}

type SubmissionRecorder interface {
	ObserveSubmission(outcome string)
	ObservePhotoEncode(d time.Duration)
}

type RecordsHandler struct {
	store    RecordStore
	sessions ActiveSessions
	notifier SubmissionNotifier
	metrics  SubmissionRecorder
	log      *slog.Logger
	now      func() time.Time
}

func NewRecordsHandler(store RecordStore, sessions ActiveSessions, notifier SubmissionNotifier, metrics SubmissionRecorder, log *slog.Logger) *RecordsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &RecordsHandler{
		store:    store,
		sessions: sessions,
		notifier: notifier,
		metrics:  metrics,
		log:      log,
		now:      time.Now,
	}
}

// SubmitRecordForm is the multipart body of a fueling submission.
type SubmitRecordForm struct {
	// pointers so that an explicit 0 passes "required"
	Mileage      *int64           `form:"mileage" json:"mileage" binding:"required,gte=0"`
	VehiclePlate string           `form:"vehiclePlate" json:"vehiclePlate" binding:"required,notblank,max=16"`
	Cost         *float64         `form:"cost" json:"cost" binding:"required,gte=0"`
	Liters       *float64         `form:"liters" json:"liters" binding:"required,gte=0"`
	FuelType     fueling.FuelType `form:"fuelType" json:"fuelType" binding:"omitempty,oneof=Gasolina Diesel Etanol"`

	DashboardPhoto *multipart.FileHeader `form:"dashboardPhoto" json:"dashboardPhoto" binding:"required"`
	PumpPhoto      *multipart.FileHeader `form:"pumpPhoto" json:"pumpPhoto" binding:"required"`

	// epoch milliseconds or RFC 3339; the browser's File.lastModified
	DashboardPhotoLastModified string `form:"dashboardPhotoLastModified" json:"dashboardPhotoLastModified"`
	PumpPhotoLastModified      string `form:"pumpPhotoLastModified" json:"pumpPhotoLastModified"`
}

// List returns the caller's records, newest first.
func (h *RecordsHandler) List(ctx *gin.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}

	records := h.store.ForDriver(s.User.ID)
	report.SortNewestFirst(records)

	ctx.JSON(http.StatusOK, gin.H{
		"records": records,
		"count":   len(records),
	})
}

func (h *RecordsHandler) Submit(ctx *gin.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}
	driver := s.User

	var form SubmitRecordForm
	if !BindForm(ctx, &form) {
		return
	}

	submittedAt := h.now()

	dashModified, err := photos.ParseLastModified(form.DashboardPhotoLastModified, submittedAt)
	if err != nil {
		RespondBadRequest(ctx, "Invalid form data", gin.H{"field": "dashboardPhotoLastModified", "reason": err.Error()})
		return
	}
	pumpModified, err := photos.ParseLastModified(form.PumpPhotoLastModified, submittedAt)
	if err != nil {
		RespondBadRequest(ctx, "Invalid form data", gin.H{"field": "pumpPhotoLastModified", "reason": err.Error()})
		return
	}

	start := time.Now()
	dash, pump, err := photos.EncodePair(
		ctx.Request.Context(),
		photos.FromFileHeader(form.DashboardPhoto, dashModified),
		photos.FromFileHeader(form.PumpPhoto, pumpModified),
	)
	if h.metrics != nil {
		h.metrics.ObservePhotoEncode(time.Since(start))
	}
	if err != nil {
		h.observe("photo_error")
		h.log.WarnContext(ctx.Request.Context(), "photo processing failed", "err", err)
		RespondUnprocessable(ctx, "photo_processing_failed", "Error processing images.", gin.H{"reason": err.Error()})
		return
	}

	data := fueling.NewRecord{
		VehiclePlate:   form.VehiclePlate,
		Cost:           *form.Cost,
		Liters:         *form.Liters,
		FuelType:       form.FuelType,
		Mileage:        *form.Mileage,
		DashboardPhoto: dash,
		PumpPhoto:      pump,
	}.Normalize()

	rec, stored := h.store.Add(driver, data)

	// the review outcome is simulated for every submission, stored or not
	h.notifier.ScheduleReview(driver.ID, data.VehiclePlate)

	if !stored {
		h.observe("dropped")
		h.log.InfoContext(ctx.Request.Context(), "submission dropped, driver has no vehicle", "driver_id", driver.ID)
		ctx.JSON(http.StatusAccepted, gin.H{"recorded": false})
		return
	}

	h.observe("stored")
	h.notifier.RecordSubmitted(ctx.Request.Context(), driver.Name, rec.VehiclePlate)

	h.log.InfoContext(ctx.Request.Context(), "record submitted", "record_id", rec.ID, "plate", rec.VehiclePlate)
	ctx.JSON(http.StatusCreated, rec)
}

// session returns the session RequireAuth validated, not whichever one the
// gate holds now, so a login racing this request cannot change its driver.
func (h *RecordsHandler) session(ctx *gin.Context) (session.Session, bool) {
	id, _ := middlewares.SessionIDFromContext(ctx)

	s, ok := h.sessions.Get(id)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "No active session")
		return session.Session{}, false
	}
	return s, true
}

func (h *RecordsHandler) observe(outcome string) {
	if h.metrics != nil {
		h.metrics.ObserveSubmission(outcome)
	}
}
