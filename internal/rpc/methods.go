package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/khanglvm/retroos-brain/internal/brain"
)

func invalidParams(format string, args ...interface{}) *Error {
	return &Error{Code: CodeInvalidParams, Message: fmt.Sprintf(format, args...)}
}

func decodeParams(raw json.RawMessage, v interface{}) *Error {
	if len(raw) == 0 {
		return invalidParams("missing params")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return invalidParams("invalid params: %v", err)
	}
	return nil
}

// normalizeAction validates an action from the wire and stamps it with
// the server clock if it arrived without a timestamp.
func (s *Server) normalizeAction(a brain.UserAction) (brain.UserAction, *Error) {
	if !a.Kind.Valid() {
		return a, invalidParams("unknown action type %q", a.Kind)
	}
	if a.SubjectID == "" {
		return a, invalidParams("appId is required")
	}
	if a.Timestamp == 0 {
		a.Timestamp = s.clock()
	}
	return a, nil
}

func (s *Server) handleRecordAction(raw json.RawMessage) (interface{}, *Error) {
	var action brain.UserAction
	if err := decodeParams(raw, &action); err != nil {
		return nil, err
	}
	action, rpcErr := s.normalizeAction(action)
	if rpcErr != nil {
		return nil, rpcErr
	}

	s.engine.RecordAction(action)
	if s.journal != nil {
		s.journal.Track(action)
	}
	return AckResult{OK: true}, nil
}

func (s *Server) handleRecordRejection(raw json.RawMessage) (interface{}, *Error) {
	var params RejectionParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	if params.AppID == "" {
		return nil, invalidParams("appId is required")
	}

	s.engine.RecordRejection(params.AppID)
	return AckResult{OK: true}, nil
}

func (s *Server) handleGenerateComment(raw json.RawMessage) (interface{}, *Error) {
	var params CommentParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	action, rpcErr := s.normalizeAction(params.Action)
	if rpcErr != nil {
		return nil, rpcErr
	}

	name := s.displayName
	if params.DisplayName != nil {
		name = *params.DisplayName
	}
	return CommentResult{Comment: s.engine.GenerateComment(action, name)}, nil
}

func (s *Server) handleSystemDialog() (interface{}, *Error) {
	dialog, ok := s.engine.ShouldShowSystemDialog()
	if !ok {
		return DialogResult{}, nil
	}
	return DialogResult{Show: true, Dialog: &dialog}, nil
}

func (s *Server) handleSortedApps(raw json.RawMessage) (interface{}, *Error) {
	var params SortParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	if params.AppIDs == nil {
		params.AppIDs = []string{}
	}
	return SortResult{AppIDs: s.engine.GetSortedApps(params.AppIDs)}, nil
}
