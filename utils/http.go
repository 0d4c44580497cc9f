package utils

import "github.com/saiset-co/sai-dispatch/types"

const (
	internalErrorBody = `{"error":"Internal Server Error","message":"An unexpected error occurred"}`
	notFoundBody      = `{"error":"Not Found","message":"The requested resource was not found"}`
)

// WriteInternalError overwrites resp with the fixed generic 500 body. The
// diagnostic never leaks into the wire response; it travels on resp.Fault.
func WriteInternalError(resp *types.Response) {
	resp.StatusCode = 500
	resp.ContentType = "application/json"
	resp.Body = []byte(internalErrorBody)
	resp.SetHeader("Cache-Control", "no-cache, no-store, must-revalidate")
}

func WriteNotFound(resp *types.Response) {
	resp.StatusCode = 404
	resp.ContentType = "application/json"
	resp.Body = []byte(notFoundBody)
}
