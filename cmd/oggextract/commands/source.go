package commands

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/haivivi/oggextract/pkg/cli"
	"github.com/haivivi/oggextract/pkg/extractor"
	"github.com/haivivi/oggextract/pkg/ogg"
	"github.com/haivivi/oggextract/pkg/source"
)

// newS3Client builds an S3 client from the context settings. Without keys
// requests are sent unsigned.
func newS3Client(s *cli.S3Settings) *s3.Client {
	opts := s3.Options{
		Region:       s.Region,
		UsePathStyle: s.UsePathStyle,
		Credentials:  aws.AnonymousCredentials{},
	}
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}
	if s.Endpoint != "" {
		opts.BaseEndpoint = aws.String(s.Endpoint)
	}
	if s.AccessKey != "" {
		creds := aws.Credentials{AccessKeyID: s.AccessKey, SecretAccessKey: s.SecretKey, Source: "oggextract config"}
		opts.Credentials = aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return creds, nil
		})
	}
	return s3.New(opts)
}

// openSource opens uri with the settings of cctx.
func openSource(ctx context.Context, cctx *cli.Context, uri string) (*source.ReaderAt, source.Identity, error) {
	opts := source.OpenOptions{WindowSize: cctx.WindowSize}
	if strings.HasPrefix(uri, "s3://") {
		settings := cctx.S3
		if settings == nil {
			settings = &cli.S3Settings{}
		}
		opts.S3 = newS3Client(settings)
	}
	return source.Open(ctx, uri, opts)
}

// extractorOptions maps the context switches to extractor options.
func extractorOptions(cctx *cli.Context) []ogg.Option {
	return []ogg.Option{
		ogg.WithLogger(slog.Default()),
		ogg.WithChecksumVerification(cctx.VerifyChecksums),
		ogg.WithDurationProbe(!cctx.SkipDurationProbe),
	}
}

// extract detects the stream in src and feeds it to out until the end.
func extract(ctx context.Context, src ogg.SeekableSource, out extractor.Output, opts []ogg.Option) (ogg.Codec, error) {
	ext := ogg.New(opts...)
	defer ext.Release()

	ok, err := ext.Detect(ctx, src)
	if err != nil {
		return ogg.CodecUnknown, err
	}
	if !ok {
		return ogg.CodecUnknown, ogg.ErrNotOgg
	}
	if err := ext.Initialize(out); err != nil {
		return ext.Codec(), err
	}

	var pos extractor.PositionHolder
	for {
		res, err := ext.Read(ctx, src, &pos)
		if err != nil {
			return ext.Codec(), err
		}
		switch res {
		case extractor.ResultEndOfInput:
			return ext.Codec(), nil
		case extractor.ResultSeekRequired:
			if err := src.SeekTo(pos.Position); err != nil {
				return ext.Codec(), err
			}
		}
	}
}
