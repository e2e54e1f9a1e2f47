// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package result

// ErrorCode represents a classifiable probe failure.
type ErrorCode string

const (
	// ErrCodeTimeout indicates the operation exceeded its declared bound.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeConnRefused indicates the target actively refused the connection.
	ErrCodeConnRefused ErrorCode = "CONNREFUSED"
	// ErrCodeHostUnreach indicates the target host is unreachable.
	ErrCodeHostUnreach ErrorCode = "HOSTUNREACH"
	// ErrCodeNetUnreach indicates the target network is unreachable.
	ErrCodeNetUnreach ErrorCode = "NETUNREACH"
	// ErrCodeDNS indicates a name resolution failure.
	ErrCodeDNS ErrorCode = "DNS"
	// ErrCodeExternalTool indicates a subprocess was missing, exited non-zero or
	// produced unusable output.
	ErrCodeExternalTool ErrorCode = "EXTERNAL_TOOL"
	// ErrCodeServiceUnavailable indicates the throughput service could not select a
	// server or complete a measurement.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeDenied indicates a permission error or unsupported configuration.
	ErrCodeDenied ErrorCode = "DENIED"
	// ErrCodeInvalidRequest indicates bad parameters from the caller.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrCodeCanceled indicates the caller abandoned the operation before it
	// finished.
	ErrCodeCanceled ErrorCode = "CANCELED"
	// ErrCodeUnknown is the catch-all for unclassified errors.
	ErrCodeUnknown ErrorCode = "UNKNOWN"
)

// ProbeError is the error content carried inside a result when a probe, or a
// single step of a probe, did not succeed.
type ProbeError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *ProbeError) Error() string {
	return string(e.Code) + ": " + e.Message
}
