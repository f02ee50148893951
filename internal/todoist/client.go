// Package todoist reads the open task list from the Todoist REST API.
package todoist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"obra/internal/telemetry"
)

const (
	DefaultBaseURL = "https://api.todoist.com"
	taskURLPrefix  = "https://todoist.com/app/task/"
)

var ErrNoToken = errors.New("No TODOIST_TOKEN")

type Task struct {
	ID       string   `json:"id"`
	Content  string   `json:"content"`
	Due      string   `json:"due"`
	Priority int      `json:"priority"`
	Labels   []string `json:"labels"`
	URL      string   `json:"url"`
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client. An empty baseURL means the public API.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, http: httpClient}
}

// Tasks returns open tasks ordered for display relative to today
// (YYYY-MM-DD).
func (c *Client) Tasks(ctx context.Context, today string) ([]Task, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}
	ctx, span := telemetry.Start(ctx, "todoist.tasks")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/tasks", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		telemetry.Fail(span, err)
		return nil, fmt.Errorf("todoist request: %w", err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("Todoist %d", resp.StatusCode)
		telemetry.Fail(span, err)
		return nil, err
	}

	raw, err := decode(resp)
	if err != nil {
		telemetry.Fail(span, err)
		return nil, err
	}

	tasks := make([]Task, 0, len(raw))
	for _, t := range raw {
		if t.Checked || t.IsDeleted {
			continue
		}
		task := Task{
			ID:       string(t.ID),
			Content:  t.Content,
			Priority: t.Priority,
			Labels:   t.Labels,
			URL:      taskURLPrefix + string(t.ID),
		}
		if task.Labels == nil {
			task.Labels = []string{}
		}
		if t.Due != nil {
			task.Due = t.Due.Date
		}
		tasks = append(tasks, task)
	}
	Sort(tasks, today)
	return tasks, nil
}

// Sort orders tasks: dated before undated, overdue before the rest, then by
// due date, then by priority (higher first).
func Sort(tasks []Task, today string) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		switch {
		case a.Due == "" && b.Due == "":
			return a.Priority > b.Priority
		case a.Due == "":
			return false
		case b.Due == "":
			return true
		}
		aOver, bOver := a.Due < today, b.Due < today
		if aOver != bOver {
			return aOver
		}
		if a.Due != b.Due {
			return a.Due < b.Due
		}
		return a.Priority > b.Priority
	})
}

type rawTask struct {
	ID        flexID   `json:"id"`
	Content   string   `json:"content"`
	Priority  int      `json:"priority"`
	Labels    []string `json:"labels"`
	Checked   bool     `json:"checked"`
	IsDeleted bool     `json:"is_deleted"`
	Due       *struct {
		Date string `json:"date"`
	} `json:"due"`
}

// flexID accepts ids encoded as strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	*f = flexID(strings.Trim(string(b), `"`))
	return nil
}

// decode accepts both {"results": [...]} and a bare array.
func decode(resp *http.Response) ([]rawTask, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	body := bytes.TrimSpace(buf.Bytes())
	if len(body) > 0 && body[0] == '[' {
		var tasks []rawTask
		if err := json.Unmarshal(body, &tasks); err != nil {
			return nil, fmt.Errorf("decode tasks: %w", err)
		}
		return tasks, nil
	}
	var page struct {
		Results []rawTask `json:"results"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return page.Results, nil
}
