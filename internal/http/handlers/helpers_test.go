package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/techfest-sliet/festd/internal/domain"
	"github.com/techfest-sliet/festd/internal/http/handlers"
)

func TestDepartments(t *testing.T) {
	rec := httptest.NewRecorder()
	handlers.Departments(rec, httptest.NewRequest(http.MethodGet, "/departments", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got []domain.Department
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 {
		t.Fatal("no departments listed")
	}
	seen := make(map[domain.Department]bool)
	for _, d := range got {
		if !d.Valid() {
			t.Errorf("listed department %q is not a valid code", d)
		}
		if seen[d] {
			t.Errorf("department %q listed twice", d)
		}
		seen[d] = true
	}
	if !seen[domain.DeptCS] {
		t.Error("CS missing from listing")
	}
}
