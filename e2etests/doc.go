// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package e2etests contains end-to-end tests for datadog-netdiag. Tests build
// the CLI and the HTTP server binaries and run the diagnostics against local
// targets through both surfaces.
package e2etests
