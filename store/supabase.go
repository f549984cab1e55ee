package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/forge-ai/promptable"
)

// Supabase reads and patches rows through the PostgREST API.
type Supabase struct {
	url      string
	key      string
	client   *http.Client
	bindings Bindings
}

func NewSupabase(baseURL, key string, bindings Bindings) *Supabase {
	return &Supabase{
		url:      baseURL,
		key:      key,
		client:   &http.Client{Timeout: 10 * time.Second},
		bindings: bindings,
	}
}

// Find loads typeName#id. A missing row is reported as not found.
func (s *Supabase) Find(ctx context.Context, typeName, id string) (promptable.Record, bool, error) {
	bd, err := s.bindings.lookup(typeName)
	if err != nil {
		return nil, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url+"/rest/v1/"+bd.Table+"?id=eq."+url.QueryEscape(id)+"&limit=1", nil)
	if err != nil {
		return nil, false, err
	}
	s.headers(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("supabase find %s: %w", bd.Table, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return nil, false, fmt.Errorf("supabase %d: %s", resp.StatusCode, raw)
	}

	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, false, fmt.Errorf("supabase decode %s: %w", bd.Table, err)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}

	row := &Row{TypeName: typeName, ID: id, Fields: rows[0], prompt: bd.Prompt}
	if c, ok := rows[0]["ai_generated_content"].(string); ok {
		row.Content = c
	}
	row.save = func(ctx context.Context, r *Row) error {
		return s.patch(ctx, bd.Table+"?id=eq."+url.QueryEscape(r.ID), map[string]any{
			"ai_generated_content": r.Content,
			"ai_generation_status": r.Status,
			"updated_at":           time.Now(),
		})
	}
	return row, true, nil
}

func (s *Supabase) patch(ctx context.Context, path string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, s.url+"/rest/v1/"+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	s.headers(req)
	req.Header.Set("Prefer", "return=minimal")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("supabase %d: %s", resp.StatusCode, raw)
	}
	return nil
}

func (s *Supabase) headers(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("apikey", s.key)
}
