// Copyright (c) Microsoft. All rights reserved.

package teaui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/microsoft/agno-client-go/agno"
)

// Notice is one client emission forwarded into the Bubble Tea program.
type Notice struct {
	Event   agno.ClientEvent
	Payload any
}

// NoticeMsg wraps a Notice as a Bubble Tea message.
type NoticeMsg struct {
	Notice Notice
}

// bridgedEvents is the set of emissions the chat UI reacts to.
var bridgedEvents = []agno.ClientEvent{
	agno.MessageUpdate,
	agno.MessageComplete,
	agno.MessageRefreshed,
	agno.MessageError,
	agno.StateChange,
	agno.StreamStart,
	agno.StreamEnd,
	agno.RunPausedNotice,
	agno.RunContinuedNotice,
	agno.RunCancelledNotice,
	agno.UIUpdate,
	agno.UIComplete,
	agno.SessionLoaded,
	agno.MemberStarted,
	agno.MemberContent,
	agno.MemberCompleted,
}

// Bridge subscribes to a client's emitter and forwards emissions into a
// buffered channel the Bubble Tea event loop drains. Handlers run on
// the client's stream goroutine, so forwarding never blocks: when the
// buffer is full the notice is dropped and the next state:change
// snapshot carries the missed mutations.
type Bridge struct {
	notices   chan Notice
	offs      []func()
	closeOnce sync.Once
}

// NewBridge attaches to the client's emitter.
func NewBridge(client *agno.Client) *Bridge {
	b := &Bridge{notices: make(chan Notice, 256)}
	for _, ev := range bridgedEvents {
		ev := ev
		off := client.Events().On(ev, func(payload any) {
			b.send(Notice{Event: ev, Payload: payload})
		})
		b.offs = append(b.offs, off)
	}
	return b
}

// Notices returns the channel the Bubble Tea program reads from.
func (b *Bridge) Notices() <-chan Notice { return b.notices }

// Close detaches from the emitter and closes the notice channel,
// which quits the program.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() {
		for _, off := range b.offs {
			off()
		}
		close(b.notices)
	})
}

func (b *Bridge) send(n Notice) {
	select {
	case b.notices <- n:
	default:
	}
}

// waitForNotice blocks until the next client emission is available.
func waitForNotice(notices <-chan Notice) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-notices
		if !ok {
			return tea.Quit()
		}
		return NoticeMsg{Notice: n}
	}
}
