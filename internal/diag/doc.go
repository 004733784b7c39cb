// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package diag defines the diagnostic record produced by checker jobs and
// the reporting contract used to deliver finished batches.
//
// # Severity
//
// Severity classifies an issue for consumers. SeverityNone is special: it
// marks an extraction result that must be dropped, never reported. The
// output parser applies that policy; everything downstream of it only ever
// sees info, warning, or error.
//
// # Reporting
//
// A Reporter receives the final ordered batch for one completed, current
// job. Delivery is a single fire-and-forget call; the supervisor never
// retries and does not interpret what the consumer does with the batch.
// Batches preserve the order in which matches appeared in the checker
// output and are never re-sorted.
//
// # Thread Safety
//
// Reporter implementations in this package are safe for concurrent use;
// completion handlers for different documents may report in parallel.
package diag
