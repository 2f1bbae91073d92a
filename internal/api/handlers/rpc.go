package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/concave-dev/dhcpool/internal/dhcp"
	"github.com/concave-dev/dhcpool/internal/dhcpsvc"
	"github.com/concave-dev/dhcpool/internal/logging"
	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key holding the request ID.
const RequestIDKey = "request_id"

// Outcomes reported to the Observer.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeMalformed = "malformed"
)

// CommandRunner runs one RPC command.
type CommandRunner interface {
	Execute(ctx context.Context, method string, args []string, options json.RawMessage) (any, error)
}

// Observer is told about every RPC command the handler runs.
type Observer interface {
	ObserveCommand(method, outcome string, elapsed time.Duration)
	ObserveRangeCheck(valid bool)
}

// RPCRequest is the command envelope: params holds the positional
// arguments and the options object, in that order.
type RPCRequest struct {
	Method string            `json:"method" binding:"required"`
	Params []json.RawMessage `json:"params"`
	ID     any               `json:"id"`
}

// RPCResponse carries either a result or an error.
type RPCResponse struct {
	Result    any                   `json:"result"`
	Error     *dhcpsvc.CommandError `json:"error"`
	ID        any                   `json:"id"`
	RequestID string                `json:"request_id,omitempty"`
}

// HandleRPC runs the command in the request body. Command failures are
// answered with 200 and an error object; only a malformed envelope gets 400.
func HandleRPC(runner CommandRunner, obs Observer) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString(RequestIDKey)

		var req RPCRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			obs.ObserveCommand("", OutcomeMalformed, 0)
			c.JSON(http.StatusBadRequest, RPCResponse{
				Error:     malformed(fmt.Sprintf("invalid request: %v", err)),
				RequestID: requestID,
			})
			return
		}

		args, options, err := splitParams(req.Params)
		if err != nil {
			obs.ObserveCommand(req.Method, OutcomeMalformed, 0)
			c.JSON(http.StatusBadRequest, RPCResponse{
				Error:     malformed(err.Error()),
				ID:        req.ID,
				RequestID: requestID,
			})
			return
		}

		start := time.Now()
		result, err := runner.Execute(c.Request.Context(), req.Method, args, options)
		elapsed := time.Since(start)

		resp := RPCResponse{ID: req.ID, RequestID: requestID}
		if err != nil {
			resp.Error = dhcpsvc.AsCommandError(err)
			obs.ObserveCommand(req.Method, OutcomeError, elapsed)
			logging.Debug("RPC %s [%s] failed: %s", req.Method, logging.FormatRequestID(requestID), resp.Error.Message)
		} else {
			resp.Result = result
			obs.ObserveCommand(req.Method, OutcomeOK, elapsed)
			if check, ok := result.(dhcp.CheckResult); ok {
				obs.ObserveRangeCheck(check.Result)
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

// splitParams decodes [[args...], {options}]. Both parts are optional.
func splitParams(params []json.RawMessage) ([]string, json.RawMessage, error) {
	if len(params) > 2 {
		return nil, nil, fmt.Errorf("params takes at most 2 elements, got %d", len(params))
	}

	var args []string
	if len(params) > 0 {
		if err := json.Unmarshal(params[0], &args); err != nil {
			return nil, nil, fmt.Errorf("params[0] must be a list of strings: %w", err)
		}
	}

	var options json.RawMessage
	if len(params) > 1 {
		var opts map[string]json.RawMessage
		if err := json.Unmarshal(params[1], &opts); err != nil {
			return nil, nil, fmt.Errorf("params[1] must be an object: %w", err)
		}
		options = params[1]
	}
	return args, options, nil
}

func malformed(message string) *dhcpsvc.CommandError {
	return &dhcpsvc.CommandError{Code: dhcpsvc.CodeInternal, Name: "ProtocolError", Message: message}
}
