package todoist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ids(tasks []Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestSort(t *testing.T) {
	tasks := []Task{
		{ID: "undated-low", Priority: 1},
		{ID: "future", Due: "2024-05-20", Priority: 1},
		{ID: "today-high", Due: "2024-05-15", Priority: 4},
		{ID: "overdue", Due: "2024-05-10", Priority: 1},
		{ID: "today-low", Due: "2024-05-15", Priority: 1},
		{ID: "undated-high", Priority: 4},
		{ID: "older-overdue", Due: "2024-05-01", Priority: 1},
	}
	Sort(tasks, "2024-05-15")
	want := []string{"older-overdue", "overdue", "today-high", "today-low", "future", "undated-high", "undated-low"}
	if diff := cmp.Diff(want, ids(tasks)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestTasks(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"paginated", `{"results":[{"id":"1","content":"Comprar cemento","priority":4,"labels":["obra"],"due":{"date":"2024-05-14"}},{"id":"2","content":"done","checked":true},{"id":"3","content":"gone","is_deleted":true},{"id":"4","content":"Llamar","priority":1}]}`},
		{"bare array", `[{"id":1,"content":"Comprar cemento","priority":4,"labels":["obra"],"due":{"date":"2024-05-14"}},{"id":4,"content":"Llamar","priority":1}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/v1/tasks" || r.Header.Get("Authorization") != "Bearer tok" {
					http.Error(w, "bad request", http.StatusBadRequest)
					return
				}
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			tasks, err := New(srv.URL, "tok", srv.Client()).Tasks(context.Background(), "2024-05-15")
			if err != nil {
				t.Fatal(err)
			}
			want := []Task{
				{ID: "1", Content: "Comprar cemento", Due: "2024-05-14", Priority: 4, Labels: []string{"obra"}, URL: "https://todoist.com/app/task/1"},
				{ID: "4", Content: "Llamar", Priority: 1, Labels: []string{}, URL: "https://todoist.com/app/task/4"},
			}
			if diff := cmp.Diff(want, tasks); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestTasksErrors(t *testing.T) {
	if _, err := New("", "", nil).Tasks(context.Background(), "2024-05-15"); !errors.Is(err, ErrNoToken) {
		t.Fatalf("err = %v, want ErrNoToken", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()
	_, err := New(srv.URL, "tok", srv.Client()).Tasks(context.Background(), "2024-05-15")
	if err == nil || err.Error() != "Todoist 401" {
		t.Fatalf("err = %v, want Todoist 401", err)
	}
}
