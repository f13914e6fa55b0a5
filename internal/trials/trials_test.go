package trials

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchQueryShape(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/studies" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"studies": [{"protocolSection": {"identificationModule": {"nctId": "NCT01"}}}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	studies, err := client.Search(context.Background(), "lung cancer")
	if err != nil {
		t.Fatal(err)
	}
	if len(studies) != 1 {
		t.Fatalf("studies = %d", len(studies))
	}
	if gotQuery["query.cond"] != "lung+cancer" {
		t.Fatalf("query.cond = %q", gotQuery["query.cond"])
	}
	if gotQuery["pageSize"] != "20" || gotQuery["format"] != "json" {
		t.Fatalf("query = %+v", gotQuery)
	}
	if gotQuery["fields"] != "NCTId,BriefTitle,OverallStatus,Phase,Condition" {
		t.Fatalf("fields = %q", gotQuery["fields"])
	}
}

func TestSearchNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "throttled", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.Search(context.Background(), "lung cancer"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearchBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.Search(context.Background(), "lung cancer"); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewClientDefaultBaseURL(t *testing.T) {
	client := NewClient("")
	if client.baseURL != defaultBaseURL {
		t.Fatalf("base url = %q", client.baseURL)
	}
}
