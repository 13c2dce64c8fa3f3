// Copyright (c) Microsoft. All rights reserved.

// Package teaui binds an [agno.Client] to a Bubble Tea terminal chat.
// A [Bridge] forwards the client's emitter notifications into a channel
// the program drains, so streamed updates repaint without polling.
// Generative-UI components are rendered through a [genui.Registry] and
// re-announced on ui:render.
//
// The whole loop is one call:
//
//	client, _ := agno.New(endpoint, agno.WithAgentID("generative-ui-demo"))
//	err := teaui.Run(ctx, client, teaui.Options{})
package teaui
