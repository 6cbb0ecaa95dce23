// Package source provides extractor.Source implementations.
//
//   - Bytes: an in-memory byte slice.
//   - ReaderAt: windowed reads over any io.ReaderAt (local files, S3 objects).
//   - Stream: a push-fed source for data arriving over time; reads report
//     extractor.ErrNeedMoreData until enough bytes are written.
//
// Open resolves a URI ("path/to/file.ogg", "file:///abs/path.ogg" or
// "s3://bucket/key") to a seekable ReaderAt source.
package source
