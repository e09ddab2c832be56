// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Buildnote

// Package client implements the interactive client application runtime.
//
// It wires the terminal editor, client services, and the background autosave
// job into a single process lifecycle.
package client
