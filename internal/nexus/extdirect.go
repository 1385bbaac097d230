package nexus

import (
	"encoding/json"
	"strings"

	"github.com/dl-alexandre/nxraw/internal/utils"
)

// ExtDirectRequest is the RPC envelope the Nexus UI endpoint accepts
type ExtDirectRequest struct {
	Action string   `json:"action"`
	Method string   `json:"method"`
	Data   []string `json:"data"`
	Type   string   `json:"type"`
	TID    int      `json:"tid"`
}

// NewDeleteFolderRequest builds the deleteFolder call. Nexus expects the
// folder first and the repository second.
func NewDeleteFolderRequest(repo, folder string, tid int) ExtDirectRequest {
	return ExtDirectRequest{
		Action: utils.ExtDirectAction,
		Method: utils.ExtDirectDeleteMethod,
		Data:   []string{folder, repo},
		Type:   utils.ExtDirectType,
		TID:    tid,
	}
}

// ExtDirectResult is the result member of an rpc response
type ExtDirectResult struct {
	Success *bool           `json:"success,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ExtDirectResponse is a decoded rpc or exception response
type ExtDirectResponse struct {
	TID     int              `json:"tid"`
	Action  string           `json:"action"`
	Method  string           `json:"method"`
	Type    string           `json:"type"`
	Message string           `json:"message,omitempty"`
	Result  *ExtDirectResult `json:"result,omitempty"`
}

// parseExtDirectResponse decodes body. ok is false for empty or non-JSON
// bodies.
func parseExtDirectResponse(body string) (resp *ExtDirectResponse, ok bool) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return nil, false
	}
	// Batched calls come back as an array; only one call is ever sent.
	if strings.HasPrefix(trimmed, "[") {
		var batch []ExtDirectResponse
		if err := json.Unmarshal([]byte(trimmed), &batch); err != nil || len(batch) == 0 {
			return nil, false
		}
		return &batch[0], true
	}
	var single ExtDirectResponse
	if err := json.Unmarshal([]byte(trimmed), &single); err != nil {
		return nil, false
	}
	return &single, true
}

// Failure reports whether the server rejected the call, with its message
func (r *ExtDirectResponse) Failure() (bool, string) {
	if r == nil {
		return false, ""
	}
	if r.Type == "exception" {
		return true, r.Message
	}
	if r.Result != nil && r.Result.Success != nil && !*r.Result.Success {
		msg := r.Result.Message
		if msg == "" {
			msg = r.Message
		}
		return true, msg
	}
	return false, ""
}
