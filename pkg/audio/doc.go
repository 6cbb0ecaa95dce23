// Package audio groups codec-level helpers used by the container extractors.
//
//   - codec/opus: Opus TOC parsing and per-packet sample counts
//
// Container parsing lives in github.com/haivivi/oggextract/pkg/ogg.
package audio
