// Copyright (c) Microsoft. All rights reserved.

package agno_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/microsoft/agno-client-go/agno"
)

func TestClient_FetchSessions(t *testing.T) {
	var got *http.Request
	rt := mockTransportFunc(func(req *http.Request) (*http.Response, error) {
		got = req
		return jsonResponse(http.StatusOK, `{"data":[
			{"session_id":"sess-1","session_name":"first"},
			{"session_id":"sess-2","session_name":"second"}
		]}`), nil
	})
	client := newClient(t, rt, agno.WithUserID("u-1"))

	sessions, err := client.FetchSessions(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(sessions) != 2 || sessions[0].SessionID != "sess-1" || sessions[1].SessionName != "second" {
		t.Fatalf("sessions = %+v", sessions)
	}

	if got.URL.Path != "/sessions" {
		t.Errorf("path = %q", got.URL.Path)
	}
	q := got.URL.Query()
	if q.Get("type") != "agent" || q.Get("component_id") != "generative-ui-demo" || q.Get("user_id") != "u-1" {
		t.Errorf("query = %v", q)
	}
}

func TestClient_GetSessionRequiresID(t *testing.T) {
	client := newClient(t, mockTransportFunc(func(req *http.Request) (*http.Response, error) {
		t.Error("unexpected transport call")
		return nil, errors.New("unreachable")
	}))
	if _, err := client.GetSession(context.Background(), ""); !errors.Is(err, agno.ErrInvalidRequest) {
		t.Errorf("err = %v, want ErrInvalidRequest", err)
	}
}

func TestClient_LoadSession(t *testing.T) {
	rt := mockTransportFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{
			"session_id":"sess-1",
			"session_name":"revenue",
			"runs":[{
				"run_id":"run-1",
				"input":"Show me monthly revenue",
				"content":"Here you go.",
				"tools":[{
					"tool_call_id":"tc-1",
					"tool_name":"get_revenue",
					"result":{"component":"chart","title":"Monthly Revenue","data":{"type":"bar","series":[{"label":"Jan","value":10}]}}
				}]
			}]
		}`), nil
	})
	client := newClient(t, rt)

	var loaded *agno.SessionDetail
	var refreshed []*agno.ChatMessage
	client.Events().On(agno.SessionLoaded, func(p any) { loaded = p.(*agno.SessionDetail) })
	client.Events().On(agno.MessageRefreshed, func(p any) { refreshed = p.([]*agno.ChatMessage) })

	detail, err := client.LoadSession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if client.Config().SessionID != "sess-1" {
		t.Errorf("session id not adopted: %q", client.Config().SessionID)
	}
	if loaded == nil || loaded.SessionID != "sess-1" {
		t.Fatalf("session:loaded payload = %+v", loaded)
	}

	if len(refreshed) != 2 {
		t.Fatalf("refreshed messages = %d, want 2", len(refreshed))
	}
	if refreshed[0].Role != agno.RoleUser || refreshed[0].Content != "Show me monthly revenue" {
		t.Errorf("user message = %+v", refreshed[0])
	}
	assistant := refreshed[1]
	if assistant.Role != agno.RoleAssistant || assistant.Content != "Here you go." {
		t.Errorf("assistant message = %+v", assistant)
	}
	if len(assistant.UI) != 1 || assistant.UI[0].Component != "chart" {
		t.Errorf("reconstructed UI = %+v", assistant.UI)
	}
	if !assistant.Complete {
		t.Error("stored message not complete")
	}
	_ = detail
}

func TestClient_CreateAndRenameSession(t *testing.T) {
	var method, path string
	var body map[string]any
	rt := mockTransportFunc(func(req *http.Request) (*http.Response, error) {
		method, path = req.Method, req.URL.Path
		body = nil
		_ = json.NewDecoder(req.Body).Decode(&body)
		return jsonResponse(http.StatusOK, `{"session_id":"sess-9","session_name":"renamed"}`), nil
	})
	client := newClient(t, rt, agno.WithUserID("u-1"))

	var created *agno.SessionEntry
	client.Events().On(agno.SessionCreated, func(p any) { created = p.(*agno.SessionEntry) })

	entry, err := client.CreateSession(context.Background(), "quarterly review")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if method != "POST" || path != "/sessions" {
		t.Errorf("request = %s %s", method, path)
	}
	if body["session_name"] != "quarterly review" || body["type"] != "agent" || body["user_id"] != "u-1" {
		t.Errorf("body = %v", body)
	}
	if created == nil || created.SessionID != entry.SessionID {
		t.Errorf("session:created payload = %+v", created)
	}

	if _, err := client.RenameSession(context.Background(), "sess-9", "renamed"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if method != "PATCH" || path != "/sessions/sess-9" {
		t.Errorf("rename request = %s %s", method, path)
	}
	if body["session_name"] != "renamed" {
		t.Errorf("rename body = %v", body)
	}

	if _, err := client.RenameSession(context.Background(), "sess-9", ""); !errors.Is(err, agno.ErrInvalidRequest) {
		t.Errorf("empty rename err = %v", err)
	}
}

func TestClient_DeleteSessions(t *testing.T) {
	var method, path string
	var body map[string]any
	rt := mockTransportFunc(func(req *http.Request) (*http.Response, error) {
		method, path = req.Method, req.URL.Path
		body = nil
		if req.Body != nil {
			_ = json.NewDecoder(req.Body).Decode(&body)
		}
		return jsonResponse(http.StatusOK, `{}`), nil
	})
	client := newClient(t, rt)

	if err := client.DeleteSession(context.Background(), "sess-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if method != "DELETE" || path != "/sessions/sess-1" {
		t.Errorf("request = %s %s", method, path)
	}

	if err := client.DeleteSessions(context.Background(), []string{"sess-1", "sess-2"}); err != nil {
		t.Fatalf("bulk delete: %v", err)
	}
	if method != "DELETE" || path != "/sessions" {
		t.Errorf("bulk request = %s %s", method, path)
	}
	ids, _ := body["session_ids"].([]any)
	if len(ids) != 2 {
		t.Errorf("bulk body = %v", body)
	}

	if err := client.DeleteSessions(context.Background(), nil); !errors.Is(err, agno.ErrInvalidRequest) {
		t.Errorf("empty bulk err = %v", err)
	}
}

func TestClient_GetRun(t *testing.T) {
	var path string
	rt := mockTransportFunc(func(req *http.Request) (*http.Response, error) {
		path = req.URL.Path
		return jsonResponse(http.StatusOK, `{"run_id":"run-1","input":"hi","content":"hello"}`), nil
	})
	client := newClient(t, rt)

	run, err := client.GetRun(context.Background(), "sess-1", "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if path != "/sessions/sess-1/runs/run-1" {
		t.Errorf("path = %q", path)
	}
	if run.Content != "hello" {
		t.Errorf("run = %+v", run)
	}

	if _, err := client.GetRun(context.Background(), "sess-1", ""); !errors.Is(err, agno.ErrInvalidRequest) {
		t.Errorf("err = %v, want ErrInvalidRequest", err)
	}
}
