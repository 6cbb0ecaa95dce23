// Package ogg detects and demultiplexes Ogg streams carrying FLAC, Vorbis or
// Opus.
//
// An Extractor is driven one call at a time by a host pipeline:
//
//	ext := ogg.New()
//	ok, err := ext.Detect(ctx, src)
//	if err != nil || !ok {
//	    // not ours, or retry after more data is buffered
//	}
//	if err := ext.Initialize(out); err != nil {
//	    return err
//	}
//	var pos extractor.PositionHolder
//	for {
//	    res, err := ext.Read(ctx, src, &pos)
//	    ...
//	}
//
// Detection is speculative: a stream that is not an Ogg FLAC, Vorbis or Opus
// stream is refused with false, never with an error, so the host can try
// another container. Once detected, malformed data is reported as a
// *ParseError carrying the byte offset of the offending page.
//
// Only the first logical bitstream is followed; pages with other serial
// numbers are skipped.
package ogg
