// Copyright 2015 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License included
// in the file licenses/BSL.txt and at www.mariadb.com/bsl11.
//
// Change Date: 2022-10-01
//
// On the date above, in accordance with the Business Source License, use
// of this software will be governed by the Apache License, Version 2.0,
// included in the file licenses/APL.txt and at
// https://www.apache.org/licenses/LICENSE-2.0

// Package log provides structured, context-tag-aware logging for the
// optimizer core, in place of the ambient global logger the rest of the
// codebase this module was distilled from relies on. Every entry is
// prefixed with the logtags carried by ctx (rule name, group id, session
// id, ...), matching the original's "[tag1,tag2] message" convention, but
// routes through the standard library's log package rather than a
// cluster-wide logging sink -- the core has no persisted state (§6) and no
// business writing to one.
package log

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cockroachdb/logtags"
)

// verbosity is a process-wide verbosity level, analogous to the original's
// vmodule-driven log.V. It defaults to 0 (only Infof/Warningf/Errorf
// fire); tests can raise it to see Vdepth-gated detail.
var verbosity int32

// SetVerbosity adjusts the verbosity threshold V checks against. Intended
// for tests that want --vmodule-style trace detail.
func SetVerbosity(level int32) { verbosity = level }

// V reports whether logging at the given verbosity level is enabled.
func V(level int32) bool { return level <= verbosity }

// formatTags appends ctx's logtags to buf in "[tag1,tag2] " form, matching
// the original's formatTags helper. Returns false if ctx carries no tags.
func formatTags(ctx context.Context, buf *strings.Builder) bool {
	tags := logtags.FromContext(ctx)
	if tags == nil {
		return false
	}
	buf.WriteByte('[')
	tags.FormatToString(buf)
	buf.WriteString("] ")
	return true
}

// MakeMessage renders a structured log entry: ctx's tags followed by the
// formatted message.
func MakeMessage(ctx context.Context, format string, args []interface{}) string {
	var buf strings.Builder
	formatTags(ctx, &buf)
	if len(args) == 0 {
		buf.WriteString(format)
	} else if len(format) == 0 {
		fmt.Fprint(&buf, args...)
	} else {
		fmt.Fprintf(&buf, format, args...)
	}
	return buf.String()
}

// Infof logs a tag-prefixed message at info level.
func Infof(ctx context.Context, format string, args ...interface{}) {
	log.Print(MakeMessage(ctx, format, args))
}

// InfofDepth logs like Infof; depth is accepted for call-site parity with
// the original API but is not used to adjust caller reporting here.
func InfofDepth(ctx context.Context, depth int, format string, args ...interface{}) {
	log.Print(MakeMessage(ctx, format, args))
}

// Warningf logs a tag-prefixed message at warning level.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	log.Print("WARNING: " + MakeMessage(ctx, format, args))
}

// Errorf logs a tag-prefixed message at error level.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	log.Print("ERROR: " + MakeMessage(ctx, format, args))
}
