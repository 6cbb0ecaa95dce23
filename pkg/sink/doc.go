// Package sink provides extractor outputs: Memory collects everything for
// inspection, RTP packetizes samples into RTP packets.
package sink
