// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package batch sequences the per-drawing jobs of one run.
//
// Invocations are strictly sequential: the external host is a single
// stateful process shared across all items, so jobs are never run in
// parallel. One item's failure never aborts the batch; only cancellation
// stops enumeration, and items not yet started are excluded from both the
// succeeded and failed lists.
package batch
