// Package llm defines the boundary to a generative model service.
//
// Adapters in internal/provider translate SDK payloads into these types once,
// so content blocks reach the orchestrator already tagged by Kind.
//
// Flow:
//
//	Request{System, Messages, Tools} -> Client.CreateMessage -> Response{StopReason, Content}
package llm
