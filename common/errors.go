// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package common

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/exec"
	"syscall"

	"github.com/DataDog/datadog-netdiag/result"
)

// ErrNoReply is returned by echo transports when no reply arrived within the
// attempt window.
var ErrNoReply = errors.New("no reply received")

// ToolError wraps failures of an external command (missing binary, non-zero
// exit, unusable output).
type ToolError struct {
	Tool string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// ServiceError wraps failures of a remote measurement service.
type ServiceError struct {
	Service string
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s unavailable: %s", e.Service, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// ClassifyError inspects an error chain and returns a ProbeError with the appropriate code.
func ClassifyError(err error) *result.ProbeError {
	if err == nil {
		return nil
	}

	var probeErr *result.ProbeError
	if errors.As(err, &probeErr) {
		return &result.ProbeError{Code: probeErr.Code, Message: err.Error()}
	}

	// Timeouts win over the wrapper type: a path tracer killed at its deadline
	// is reported as a timeout, not a tool failure.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrNoReply) {
		return newProbeError(result.ErrCodeTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return newProbeError(result.ErrCodeCanceled, err)
	}

	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return newProbeError(result.ErrCodeExternalTool, err)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return newProbeError(result.ErrCodeExternalTool, err)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return newProbeError(result.ErrCodeExternalTool, err)
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		if isTimeout(serviceErr.Err) {
			return newProbeError(result.ErrCodeTimeout, err)
		}
		return newProbeError(result.ErrCodeServiceUnavailable, err)
	}

	var netDNSErr *net.DNSError
	if errors.As(err, &netDNSErr) {
		if netDNSErr.IsTimeout {
			return newProbeError(result.ErrCodeTimeout, err)
		}
		return newProbeError(result.ErrCodeDNS, err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		var errno syscall.Errno
		if errors.As(opErr.Err, &errno) {
			return classifySyscallError(errno, err)
		}
		if opErr.Timeout() {
			return newProbeError(result.ErrCodeTimeout, err)
		}
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return classifySyscallError(errno, err)
	}

	if isTimeout(err) {
		return newProbeError(result.ErrCodeTimeout, err)
	}

	return newProbeError(result.ErrCodeUnknown, err)
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func classifySyscallError(errno syscall.Errno, original error) *result.ProbeError {
	switch errno {
	case syscall.ECONNREFUSED:
		return newProbeError(result.ErrCodeConnRefused, original)
	case syscall.EHOSTUNREACH:
		return newProbeError(result.ErrCodeHostUnreach, original)
	case syscall.ENETUNREACH:
		return newProbeError(result.ErrCodeNetUnreach, original)
	case syscall.EACCES, syscall.EPERM:
		return newProbeError(result.ErrCodeDenied, original)
	case syscall.ETIMEDOUT:
		return newProbeError(result.ErrCodeTimeout, original)
	default:
		return newProbeError(result.ErrCodeUnknown, original)
	}
}

func newProbeError(code result.ErrorCode, err error) *result.ProbeError {
	return &result.ProbeError{Code: code, Message: err.Error()}
}
