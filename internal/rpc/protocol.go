package rpc

import (
	"encoding/json"

	"github.com/khanglvm/retroos-brain/internal/brain"
	"github.com/khanglvm/retroos-brain/internal/version"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
)

// Request represents an incoming JSON-RPC request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response represents an outgoing JSON-RPC response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents a JSON-RPC error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// Methods lists every method the server answers.
func Methods() []string {
	return []string{
		"initialize",
		"ping",
		"recordAction",
		"recordRejection",
		"generateComment",
		"shouldShowHelper",
		"shouldShowSystemDialog",
		"getPredictions",
		"getSortedApps",
		"getDebugInfo",
	}
}

// InitializeResult answers initialize.
type InitializeResult struct {
	ServerInfo version.Info `json:"serverInfo"`
	Methods    []string     `json:"methods"`
}

// RejectionParams are the params of recordRejection.
type RejectionParams struct {
	AppID string `json:"appId"`
}

// CommentParams are the params of generateComment.
type CommentParams struct {
	Action      brain.UserAction `json:"action"`
	DisplayName *string          `json:"displayName,omitempty"`
}

// SortParams are the params of getSortedApps.
type SortParams struct {
	AppIDs []string `json:"appIds"`
}

// AckResult answers calls that only change state.
type AckResult struct {
	OK bool `json:"ok"`
}

// CommentResult answers generateComment.
type CommentResult struct {
	Comment string `json:"comment"`
}

// HelperResult answers shouldShowHelper.
type HelperResult struct {
	Show bool `json:"show"`
}

// DialogResult answers shouldShowSystemDialog. Dialog is null when Show is false.
type DialogResult struct {
	Show   bool          `json:"show"`
	Dialog *brain.Dialog `json:"dialog"`
}

// PredictionsResult answers getPredictions.
type PredictionsResult struct {
	Predictions []brain.Prediction `json:"predictions"`
}

// SortResult answers getSortedApps.
type SortResult struct {
	AppIDs []string `json:"appIds"`
}
