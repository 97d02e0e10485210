package domain

import (
	"reflect"
	"sort"
)

// Status discriminates the three envelope shapes.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusPartial Status = "partial"
)

// Summary carries the counts of a partial response.
type Summary struct {
	Total               int `json:"total"`
	Succeeded           int `json:"succeeded"`
	Failed              int `json:"failed"`
	RecoverableFailures int `json:"recoverable_failures"`
}

// Response is the outer JSON envelope printed for every direct invocation.
// Exactly one of the three shapes is populated:
//
//	success: {status, result}
//	error:   {status, error}
//	partial: {status, result, summary, errors?}
type Response struct {
	Status  Status           `json:"status"`
	Result  any              `json:"result,omitempty"`
	Error   *ErrorDetail     `json:"error,omitempty"`
	Summary *Summary         `json:"summary,omitempty"`
	Errors  []map[string]any `json:"errors,omitempty"`
}

// Success wraps a result object in a success envelope. The result is always
// emitted, even when empty.
func Success(result map[string]any) Response {
	if result == nil {
		result = map[string]any{}
	}
	return Response{Status: StatusSuccess, Result: result}
}

// Failure builds an error envelope with the code's default recoverability.
func Failure(code ErrorCode, message string) Response {
	return NewError(code, message).Response()
}

// PartialOption tunes Partial's succeeded-count detection.
type PartialOption func(*partialConfig)

type partialConfig struct {
	resultKey string
}

// WithResultKey names the result entry whose list length is the succeeded
// count. Without it the first list-valued entry (by key order) is used.
func WithResultKey(key string) PartialOption {
	return func(c *partialConfig) {
		c.resultKey = key
	}
}

// Partial builds a batch outcome envelope. The status derives from the
// counts: error iff nothing succeeded and something failed, success iff
// nothing failed, partial otherwise. The errors list is attached only when
// non-empty.
func Partial(result map[string]any, errs []map[string]any, opts ...PartialOption) Response {
	var cfg partialConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	succeeded := 0
	if cfg.resultKey != "" {
		succeeded = listLen(result[cfg.resultKey])
	} else {
		keys := make([]string, 0, len(result))
		for k := range result {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if n, ok := tryListLen(result[k]); ok {
				succeeded = n
				break
			}
		}
	}

	failed := len(errs)
	recoverable := 0
	for _, e := range errs {
		if r, ok := e["recoverable"].(bool); ok && r {
			recoverable++
		}
	}

	status := StatusPartial
	switch {
	case failed == 0:
		status = StatusSuccess
	case succeeded == 0:
		status = StatusError
	}

	if result == nil {
		result = map[string]any{}
	}

	resp := Response{
		Status: status,
		Result: result,
		Summary: &Summary{
			Total:               succeeded + failed,
			Succeeded:           succeeded,
			Failed:              failed,
			RecoverableFailures: recoverable,
		},
	}
	if len(errs) > 0 {
		resp.Errors = errs
	}
	return resp
}

func listLen(v any) int {
	n, _ := tryListLen(v)
	return n
}

func tryListLen(v any) (int, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		// []byte is string-like data, not a list of outcomes.
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return 0, false
		}
		return rv.Len(), true
	}
	return 0, false
}
