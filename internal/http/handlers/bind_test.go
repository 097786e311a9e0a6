package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/geocoder89/fuellog/internal/domain/user"
	"github.com/geocoder89/fuellog/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type bindDetails struct {
	JSON   string                `json:"json"`
	Field  string                `json:"field"`
	Fields []handlers.FieldError `json:"fields"`
}

func bindRouter() *gin.Engine {
	return setupRouter(http.MethodPost, "/users", func(ctx *gin.Context) {
		var req user.NewUserRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})
}

func TestBindJSON_ValidationErrorsUseJSONFieldNames(t *testing.T) {
	w := doJSON(bindRouter(), http.MethodPost, "/users", `{"name":"   ","password":"x"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	resp := decodeError(t, w)
	if resp.Error.Code != "invalid_request" {
		t.Fatalf("unexpected code: %s", resp.Error.Code)
	}

	var details bindDetails
	if err := json.Unmarshal(resp.Error.Details, &details); err != nil {
		t.Fatalf("bad details: %v", err)
	}

	wantRules := map[string]string{
		"name":    "notblank",
		"vehicle": "required",
	}

	found := map[string]handlers.FieldError{}
	for _, fieldErr := range details.Fields {
		found[fieldErr.Field] = fieldErr
	}

	for field, rule := range wantRules {
		fieldErr, ok := found[field]
		if !ok {
			t.Fatalf("missing field error for %q: %+v", field, details.Fields)
		}
		if fieldErr.Rule != rule {
			t.Fatalf("field %q rule mismatch: got %q want %q", field, fieldErr.Rule, rule)
		}
		if fieldErr.Message == "" {
			t.Fatalf("field %q should include a non-empty message", field)
		}
	}

	if _, ok := found["password"]; ok {
		t.Fatalf("password was valid, got %+v", found["password"])
	}
}

func TestBindJSON_TypeMismatchUsesJSONFieldNames(t *testing.T) {
	w := doJSON(bindRouter(), http.MethodPost, "/users", `{"name":"Ana","password":"x","vehicle":42}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var details bindDetails
	if err := json.Unmarshal(decodeError(t, w).Error.Details, &details); err != nil {
		t.Fatalf("bad details: %v", err)
	}

	if details.JSON != "invalid_json_type" {
		t.Fatalf("expected invalid_json_type, got %q", details.JSON)
	}
	if details.Field != "vehicle" {
		t.Fatalf("expected detail field to be vehicle, got %q", details.Field)
	}
}

func TestBindJSON_SyntaxError(t *testing.T) {
	w := doJSON(bindRouter(), http.MethodPost, "/users", `{"name":`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestBindForm_NumberErrors(t *testing.T) {
	r := setupRouter(http.MethodPost, "/records", func(ctx *gin.Context) {
		var form handlers.SubmitRecordForm
		if !handlers.BindForm(ctx, &form) {
			return
		}
		ctx.Status(http.StatusCreated)
	})

	req := multipartRequest(t, "/records", map[string]string{
		"mileage":      "lots",
		"vehiclePlate": "abc1d23",
		"cost":         "10",
		"liters":       "2",
	})

	w := doRequest(r, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}
}

func TestBindForm_NegativeValueNamesFormField(t *testing.T) {
	r := setupRouter(http.MethodPost, "/records", func(ctx *gin.Context) {
		var form handlers.SubmitRecordForm
		if !handlers.BindForm(ctx, &form) {
			return
		}
		ctx.Status(http.StatusCreated)
	})

	req := multipartRequest(t, "/records", map[string]string{
		"mileage":      "0",
		"vehiclePlate": "abc1d23",
		"cost":         "-3",
		"liters":       "2",
	}, upload{field: "dashboardPhoto", name: "a.png", data: pngBytes}, upload{field: "pumpPhoto", name: "b.png", data: pngBytes})

	w := doRequest(r, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var details bindDetails
	if err := json.Unmarshal(decodeError(t, w).Error.Details, &details); err != nil {
		t.Fatalf("bad details: %v", err)
	}
	if len(details.Fields) != 1 {
		t.Fatalf("want one field error, got %+v", details.Fields)
	}
	got := details.Fields[0]
	if got.Field != "cost" || got.Rule != "gte" || got.Message != "must be 0 or more" {
		t.Fatalf("unexpected field error: %+v", got)
	}
}
