package v1

import "errors"

var (
	ErrRequestCtx  = errors.New("request missing in context")
	ErrMissingURL  = errors.New("URL is required")
	ErrContentType = errors.New("Content-Type must be application/json")
	ErrNoFlush     = errors.New("response writer does not support streaming")
)
