// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package document provides the immutable content snapshot that checker
// jobs operate on.
//
// A Document is captured once when a job is launched and never mutated
// afterwards. Downstream components (parser, reporter) may therefore hold
// a reference to it for the lifetime of a job without synchronization,
// even after the originating buffer or file has changed on disk.
package document

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
)

// ID identifies the document a job belongs to.
//
// The value is opaque to the supervisor. The file watcher uses the
// absolute file path; the HTTP API uses caller-supplied identifiers and
// falls back to a generated UUID.
type ID string

// Document is an immutable snapshot of one document's full content.
//
// Thread Safety: Treat as immutable after creation. Content must not be
// modified by callers.
type Document struct {
	// ID is the stable identity of the document.
	ID ID

	// Path is the file path associated with the document, if any.
	// Empty for content submitted without a backing file.
	Path string

	// Content is the full document content at snapshot time.
	Content []byte

	// Version is a monotonically increasing snapshot marker supplied by
	// the caller (e.g., a modification counter or unix timestamp).
	Version int64
}

// New creates a document snapshot.
//
// Description:
//
//	Captures a snapshot of document content. An empty id is replaced with
//	a generated UUID so that every snapshot has a usable registry key.
//
// Inputs:
//
//	id - Stable document identity. May be empty.
//	path - Associated file path. May be empty.
//	content - Full document content. Not copied; callers must not mutate.
//	version - Snapshot marker.
//
// Outputs:
//
//	*Document - The snapshot. Never nil.
func New(id ID, path string, content []byte, version int64) *Document {
	if id == "" {
		id = ID(uuid.NewString())
	}
	return &Document{
		ID:      id,
		Path:    path,
		Content: content,
		Version: version,
	}
}

// FileName returns the name to use when writing the snapshot to a
// temporary directory.
//
// Description:
//
//	Uses the base name of the associated path so that file-mode checkers
//	see a realistic file name (extension-based behavior, shebang lookups
//	via name, etc). Documents without a path get a generated name.
//
// Outputs:
//
//	string - A bare file name, never empty, never containing a separator.
func (d *Document) FileName() string {
	if d.Path != "" {
		if base := filepath.Base(d.Path); base != "." && base != string(filepath.Separator) {
			return base
		}
	}
	return fmt.Sprintf("snapshot-%s.txt", uuid.NewString()[:8])
}

// LineRange returns the byte offsets [start, end) of a 1-based line.
//
// Description:
//
//	The range excludes the trailing newline. Extraction functions that
//	only know a line number use this to produce a diagnostic span
//	covering the whole line.
//
// Inputs:
//
//	line - 1-based line number.
//
// Outputs:
//
//	start, end - Byte offsets into Content. Lines past the end of the
//	content clamp to (len(Content), len(Content)); line values below 1
//	clamp to the first line.
func (d *Document) LineRange(line int) (start, end int) {
	if line < 1 {
		line = 1
	}
	offset := 0
	rest := d.Content
	for line > 1 {
		nl := bytes.IndexByte(rest, '\n')
		if nl < 0 {
			return len(d.Content), len(d.Content)
		}
		offset += nl + 1
		rest = rest[nl+1:]
		line--
	}
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 {
		return offset, len(d.Content)
	}
	return offset, offset + nl
}

// LineColRange returns the byte offsets [start, end) for a 1-based
// line/column position.
//
// Description:
//
//	When col is positive the range runs from that column to the end of
//	the line, which is how column-bearing checker output is usually
//	highlighted. A col of 0 or less selects the whole line.
//
// Inputs:
//
//	line - 1-based line number.
//	col - 1-based column, or <= 0 for the whole line.
//
// Outputs:
//
//	start, end - Byte offsets into Content. A zero-width range at the end
//	of a line is widened to one byte where content allows, so that empty
//	spans remain visible to consumers.
func (d *Document) LineColRange(line, col int) (start, end int) {
	start, end = d.LineRange(line)
	if col > 0 {
		if s := start + col - 1; s < end {
			start = s
		}
	}
	if start == end && end < len(d.Content) {
		end++
	}
	return start, end
}

// Position converts a byte offset into a 1-based line and column.
//
// Inputs:
//
//	offset - Byte offset into Content. Clamped to [0, len(Content)].
//
// Outputs:
//
//	line, col - 1-based position of the offset.
func (d *Document) Position(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.Content) {
		offset = len(d.Content)
	}
	prefix := d.Content[:offset]
	line = bytes.Count(prefix, []byte{'\n'}) + 1
	lastNL := bytes.LastIndexByte(prefix, '\n')
	col = offset - lastNL // lastNL is -1 on the first line
	return line, col
}
