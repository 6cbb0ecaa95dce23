// Package buffer provides a thread-safe growable window buffer for streaming
// data that arrives in pieces.
//
// A Buffer keeps elements addressed by absolute offset: writers append at the
// end, a single consumer inspects any retained offset with ReadAt and releases
// the front with Discard. ReadAt never blocks; when the requested range has not
// arrived yet it reports ErrPending so the consumer can return and retry later,
// optionally parking in Wait until a writer catches up.
//
// The buffer supports graceful shutdown through CloseWrite (reads continue until
// the retained data is exhausted, then io.EOF) or CloseWithError (immediate
// closure of both ends).
//
// Example usage:
//
//	buf := buffer.N[byte](4096)
//	buf.Write(chunk)
//
//	p := make([]byte, 27)
//	if _, err := buf.ReadAt(p, 0); errors.Is(err, buffer.ErrPending) {
//	    // not enough data yet
//	}
//
//	buf.CloseWrite()
package buffer
