package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ledgertools/api/internal/handlers/api"
	"github.com/ledgertools/api/internal/services/charcount"
)

func toolsMux() *http.ServeMux {
	mux := http.NewServeMux()
	api.NewToolsHandler(charcount.NewService(nil), nil).RegisterRoutes(mux)
	return mux
}

func TestCharacterCount(t *testing.T) {
	mux := toolsMux()

	rr := postJSON(t, mux, "/api/v1/tools/character-count", `{"text": "first line\nsecond line"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d\nbody: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp charcount.Result
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := charcount.Result{Characters: 22, CharactersNoSpaces: 19, Words: 4, Lines: 2}
	if resp != want {
		t.Errorf("result: got %+v, want %+v", resp, want)
	}
}

func TestCharacterCount_EmptyText(t *testing.T) {
	mux := toolsMux()

	rr := postJSON(t, mux, "/api/v1/tools/character-count", `{"text": ""}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d\nbody: %s", rr.Code, rr.Body.String())
	}

	var resp charcount.Result
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp != (charcount.Result{}) {
		t.Errorf("result: got %+v, want all zeros", resp)
	}
}

func TestCharacterCount_InvalidBody(t *testing.T) {
	mux := toolsMux()

	rr := postJSON(t, mux, "/api/v1/tools/character-count", `{"text": 42`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
