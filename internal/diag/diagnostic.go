// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package diag

import (
	"github.com/AleutianAI/checkd/internal/document"
)

// Diagnostic is one reported issue at a position range within a document.
//
// Thread Safety: Treat as immutable after creation.
type Diagnostic struct {
	// DocumentID is the document the issue was found in.
	DocumentID document.ID `json:"document_id"`

	// Start is the byte offset where the issue begins.
	Start int `json:"start"`

	// End is the byte offset where the issue ends (exclusive).
	End int `json:"end"`

	// Severity is the issue classification. Never SeverityNone in a
	// reported diagnostic.
	Severity Severity `json:"severity"`

	// Message is the human-readable issue text.
	Message string `json:"message"`

	// Rule is the checker-specific rule identifier, if any.
	Rule string `json:"rule,omitempty"`

	// Checker is the name of the checker that produced the issue.
	Checker string `json:"checker,omitempty"`
}
