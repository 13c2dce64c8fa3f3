// Copyright (c) Microsoft. All rights reserved.

package agno_test

import (
	"strings"
	"testing"

	"github.com/microsoft/agno-client-go/agno"
)

const sampleStream = `{"event":"RunStarted","run_id":"run-1","session_id":"sess-1"}
{"event":"RunContent","run_id":"run-1","content":"Hello"}
{"event":"RunContent","run_id":"run-1","content":", world"}
{"event":"RunCompleted","run_id":"run-1"}
`

func feedAll(d *agno.Decoder, data []byte, chunkSize int) []agno.Event {
	var events []agno.Event
	for len(data) > 0 {
		n := chunkSize
		if n > len(data) {
			n = len(data)
		}
		events = append(events, d.Feed(data[:n])...)
		data = data[n:]
	}
	return append(events, d.Flush()...)
}

func tags(events []agno.Event) []agno.RunEvent {
	out := make([]agno.RunEvent, len(events))
	for i, ev := range events {
		out[i] = ev.Event()
	}
	return out
}

func TestDecoder_Feed(t *testing.T) {
	events := agno.NewDecoder().Feed([]byte(sampleStream))
	want := []agno.RunEvent{
		agno.EventRunStarted,
		agno.EventRunContent,
		agno.EventRunContent,
		agno.EventRunCompleted,
	}
	got := tags(events)
	if len(got) != len(want) {
		t.Fatalf("got %d events, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	content, ok := events[1].(*agno.RunContentEvent)
	if !ok {
		t.Fatalf("event 1 is %T, want *RunContentEvent", events[1])
	}
	if content.Content != "Hello" {
		t.Errorf("content = %q, want %q", content.Content, "Hello")
	}
	if content.RunID() != "run-1" {
		t.Errorf("run id = %q, want %q", content.RunID(), "run-1")
	}
}

func TestDecoder_ChunkBoundaryInvariance(t *testing.T) {
	data := []byte(sampleStream)
	want := tags(feedAll(agno.NewDecoder(), data, len(data)))

	for size := 1; size <= len(data); size++ {
		got := tags(feedAll(agno.NewDecoder(), data, size))
		if len(got) != len(want) {
			t.Fatalf("chunk size %d: got %d events, want %d", size, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("chunk size %d: [%d] = %s, want %s", size, i, got[i], want[i])
			}
		}
	}
}

func TestDecoder_SSEFraming(t *testing.T) {
	stream := "data: {\"event\":\"RunStarted\",\"run_id\":\"run-1\"}\n" +
		"\n" +
		"data: {\"event\":\"RunContent\",\"run_id\":\"run-1\",\"content\":\"hi\"}\n" +
		"data: [DONE]\n"

	events := agno.NewDecoder().Feed([]byte(stream))
	got := tags(events)
	want := []agno.RunEvent{agno.EventRunStarted, agno.EventRunContent}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestDecoder_MalformedFrameInPosition(t *testing.T) {
	stream := `{"event":"RunStarted","run_id":"run-1"}
{not json at all
{"event":"RunCompleted","run_id":"run-1"}
`
	events := agno.NewDecoder().Feed([]byte(stream))
	got := tags(events)
	want := []agno.RunEvent{agno.EventRunStarted, agno.EventParseError, agno.EventRunCompleted}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	pe := events[1].(*agno.ParseErrorEvent)
	if pe.Err == nil {
		t.Error("parse error event carries no error")
	}
	if !strings.Contains(string(pe.Raw), "not json") {
		t.Errorf("raw frame not preserved: %q", pe.Raw)
	}
}

func TestDecoder_MissingEventTag(t *testing.T) {
	events := agno.NewDecoder().Feed([]byte("{\"run_id\":\"run-1\"}\n"))
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Event() != agno.EventParseError {
		t.Errorf("event = %s, want %s", events[0].Event(), agno.EventParseError)
	}
}

func TestDecoder_UnknownTag(t *testing.T) {
	events := agno.NewDecoder().Feed([]byte("{\"event\":\"SomethingNew\",\"run_id\":\"run-9\"}\n"))
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	unrec, ok := events[0].(*agno.UnrecognizedEvent)
	if !ok {
		t.Fatalf("event is %T, want *UnrecognizedEvent", events[0])
	}
	if unrec.Tag != "SomethingNew" {
		t.Errorf("tag = %q, want %q", unrec.Tag, "SomethingNew")
	}
	if unrec.RunID() != "run-9" {
		t.Errorf("run id = %q, want %q", unrec.RunID(), "run-9")
	}
}

func TestDecoder_FlushTrailingFrame(t *testing.T) {
	d := agno.NewDecoder()
	if events := d.Feed([]byte(`{"event":"RunCompleted","run_id":"run-1"}`)); len(events) != 0 {
		t.Fatalf("frame without newline yielded %d events early", len(events))
	}
	events := d.Flush()
	if len(events) != 1 || events[0].Event() != agno.EventRunCompleted {
		t.Fatalf("flush yielded %v, want one RunCompleted", tags(events))
	}
}

func TestDecoder_FlushDropsTruncatedFrame(t *testing.T) {
	d := agno.NewDecoder()
	chunk := `{"event":"RunContent","run_id":"run-1","content":"hi"}` + "\n" + `{"event":"RunCont`
	events := d.Feed([]byte(chunk))
	if len(events) != 1 || events[0].Event() != agno.EventRunContent {
		t.Fatalf("feed yielded %v, want one RunContent", tags(events))
	}
	// The stream ended mid-frame; the fragment is not an error, the
	// sequence just ends.
	if events := d.Flush(); len(events) != 0 {
		t.Fatalf("flush yielded %v, want nothing", tags(events))
	}
}

func TestDecoder_ToolCallPayload(t *testing.T) {
	stream := `{"event":"ToolCallCompleted","run_id":"run-1","tool":{"tool_call_id":"tc-1","tool_name":"get_revenue","result":{"component":"chart","title":"Monthly Revenue","data":{"type":"bar","series":[{"label":"Jan","value":10}]}}}}` + "\n"

	events := agno.NewDecoder().Feed([]byte(stream))
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	done := events[0].(*agno.ToolCallCompletedEvent)
	if done.Tool == nil || done.Tool.ID != "tc-1" || done.Tool.Name != "get_revenue" {
		t.Fatalf("tool = %+v", done.Tool)
	}
	if len(done.Tool.Result) == 0 {
		t.Error("tool result not preserved")
	}
}

func TestDecoder_TeamAndMemberEvents(t *testing.T) {
	stream := `{"event":"TeamRunStarted","run_id":"team-run","team_id":"simple-team"}
{"event":"RunStarted","run_id":"member-run","agent_id":"researcher","parent_run_id":"team-run"}
{"event":"TeamRunCompleted","run_id":"team-run"}
`
	events := agno.NewDecoder().Feed([]byte(stream))
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Event() != agno.EventTeamRunStarted {
		t.Errorf("event 0 = %s", events[0].Event())
	}
	member := events[1].(*agno.RunStartedEvent)
	if member.ParentRunID() != "team-run" {
		t.Errorf("parent run = %q, want %q", member.ParentRunID(), "team-run")
	}
	if member.AgentID() != "researcher" {
		t.Errorf("agent = %q, want %q", member.AgentID(), "researcher")
	}
}
