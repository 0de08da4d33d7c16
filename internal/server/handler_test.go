package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jaimetur/SSB-RetuningAutomations/internal/config"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/export"
)

const handlerDump = "SubNetwork,MeContext,ManagedElement,GNBDUFunction,NRCellDU\n" +
	"NodeId\tNRCellDUId\tssbFrequency\n" +
	"430090_A\t430090_1\t648672\n" +
	"1 instance(s)\n"

func auditRequest(t *testing.T, fields map[string][]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for field, files := range fields {
		for _, content := range files {
			part, err := writer.CreateFormFile(field, "dump.log")
			if err != nil {
				t.Fatalf("create form file: %v", err)
			}
			if _, err := part.Write([]byte(content)); err != nil {
				t.Fatalf("write form file: %v", err)
			}
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/audit", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHandleAuditReturnsWorkbook(t *testing.T) {
	handler := NewHandler(config.Default(), export.NewService())
	rec := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rec, auditRequest(t, map[string][]string{
		"pre":  {handlerDump},
		"post": {handlerDump},
	}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("content type = %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Fatalf("empty workbook body")
	}
}

func TestHandleAuditRequiresFiles(t *testing.T) {
	handler := NewHandler(config.Default(), export.NewService())
	rec := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rec, auditRequest(t, nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHandleAuditRejectsGet(t *testing.T) {
	handler := NewHandler(config.Default(), export.NewService())
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/audit", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}
