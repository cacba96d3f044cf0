package preview

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/goliatone/go-formsync/pkg/renderers/vanilla"
	"github.com/goliatone/go-formsync/pkg/session"
	"github.com/goliatone/go-formsync/pkg/testsupport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func newServer(t *testing.T, options ...Option) *httptest.Server {
	t.Helper()
	s := session.New(testsupport.TriggerSchema())
	if err := s.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := session.NewDispatcher(s)
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	page, err := vanilla.New(vanilla.WithLiveEndpoint(APIPrefix))
	if err != nil {
		t.Fatalf("page renderer: %v", err)
	}
	srv, err := New(d, append([]Option{WithPage(page)}, options...)...)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	httpServer := httptest.NewServer(srv)
	t.Cleanup(func() {
		http.DefaultClient.CloseIdleConnections()
		httpServer.Close()
		cancel()
		<-done
	})
	return httpServer
}

func decodeState(t *testing.T, resp *http.Response) State {
	t.Helper()
	defer resp.Body.Close()
	var state State
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return state
}

func postChange(t *testing.T, base, field, value string) *http.Response {
	t.Helper()
	resp, err := http.PostForm(base+APIPrefix+"/change", url.Values{"field": {field}, "value": {value}})
	if err != nil {
		t.Fatalf("post change: %v", err)
	}
	return resp
}

func TestPageServesEditorAndForm(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("get page: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Fatalf("expected a request id")
	}
	var body strings.Builder
	if _, err := io.Copy(&body, resp.Body); err != nil {
		t.Fatalf("read page: %v", err)
	}
	for _, want := range []string{`id="jsonEditor"`, `<div id="dynamicForm"><form id="generatedForm">`, `var api = "/api";`} {
		if !strings.Contains(body.String(), want) {
			t.Fatalf("expected %q in page", want)
		}
	}
}

func TestPageRenderedWhileChangesArrive(t *testing.T) {
	srv := newServer(t)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		value := "yes"
		if i%2 == 1 {
			value = "no"
		}
		wg.Add(2)
		go func(value string) {
			defer wg.Done()
			resp, err := http.PostForm(srv.URL+APIPrefix+"/change", url.Values{"field": {"a"}, "value": {value}})
			if err != nil {
				t.Errorf("post change: %v", err)
				return
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}(value)
		go func() {
			defer wg.Done()
			resp, err := http.Get(srv.URL + "/")
			if err != nil {
				t.Errorf("get page: %v", err)
				return
			}
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Errorf("read page: %v", err)
				return
			}
			if n := strings.Count(string(body), `id="b_container"`); n > 1 {
				t.Errorf("page holds %d b_container elements", n)
			}
		}()
	}
	wg.Wait()
}

func TestChangeRevealsAndHides(t *testing.T) {
	srv := newServer(t)

	state := decodeState(t, postChange(t, srv.URL, "a", "yes"))
	if !strings.Contains(state.HTML, `id="b_container"`) {
		t.Fatalf("expected b_container in html, got %s", state.HTML)
	}
	if diff := cmp.Diff([]string{"b"}, state.Reveal.MountedIDs()); diff != "" {
		t.Fatalf("mounted mismatch (-want +got):\n%s", diff)
	}

	state = decodeState(t, postChange(t, srv.URL, "a", "no"))
	if strings.Contains(state.HTML, "b_container") {
		t.Fatalf("expected b_container removed")
	}

	resp := postChange(t, srv.URL, "zzz", "yes")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown trigger, got %d", resp.StatusCode)
	}
	if state := decodeState(t, resp); state.Error == "" {
		t.Fatalf("expected error message for unknown trigger")
	}
}

func TestTextEditsAndReload(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Post(srv.URL+APIPrefix+"/text", "application/json", strings.NewReader("{\n  \"title\": \"broken\",\n"))
	if err != nil {
		t.Fatalf("post text: %v", err)
	}
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for malformed text, got %d", resp.StatusCode)
	}
	state := decodeState(t, resp)
	if !strings.Contains(state.Error, "schema: parse") || state.Title != "Trigger" {
		t.Fatalf("expected parse error with the previous form kept, got %+v", state)
	}
	if !strings.Contains(state.HTML, `id="a_container"`) {
		t.Fatalf("expected previous form kept after a rejected edit")
	}

	resp, err = http.Post(srv.URL+APIPrefix+"/text", "application/json", strings.NewReader(`{"title":"Edited","fields":[{"id":"x","label":"X","type":"email"}]}`))
	if err != nil {
		t.Fatalf("post text: %v", err)
	}
	state = decodeState(t, resp)
	if state.Title != "Edited" || !strings.Contains(state.HTML, `id="x_container"`) {
		t.Fatalf("expected edited form, got %+v", state)
	}

	resp, err = http.Post(srv.URL+APIPrefix+"/reload", "text/plain", nil)
	if err != nil {
		t.Fatalf("post reload: %v", err)
	}
	state = decodeState(t, resp)
	if state.Title != "Trigger" || !strings.Contains(state.Text, `"title": "Trigger"`) {
		t.Fatalf("expected initial schema restored, got %+v", state)
	}

	resp, err = http.Get(srv.URL + APIPrefix + "/state")
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if got := decodeState(t, resp); got.Title != "Trigger" {
		t.Fatalf("unexpected state %+v", got)
	}
}

func TestChangeRequiresField(t *testing.T) {
	srv := newServer(t)
	resp := postChange(t, srv.URL, "", "yes")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestAssetsAndRequestID(t *testing.T) {
	srv := newServer(t, WithAssets(fstest.MapFS{"theme.css": {Data: []byte("body{}")}}))

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/assets/theme.css", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set(RequestIDHeader, "fixed-id")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if resp.Header.Get(RequestIDHeader) != "fixed-id" {
		t.Fatalf("expected the caller's request id echoed")
	}
}

func TestNewValidatesInputs(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("expected nil dispatcher to fail")
	}
	d := session.NewDispatcher(session.New(testsupport.TriggerSchema()))
	if _, err := New(d); err == nil {
		t.Fatalf("expected missing page output to fail")
	}
}
