package ogg

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/haivivi/oggextract/pkg/extractor"
)

// Outcome classifies a detection attempt.
type Outcome int

const (
	OutcomeNotAPage Outcome = iota
	OutcomeBOSMissing
	OutcomeUnrecognized
	OutcomeMalformed
	OutcomeMatched
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNotAPage:
		return "not-a-page"
	case OutcomeBOSMissing:
		return "bos-missing"
	case OutcomeUnrecognized:
		return "unrecognized"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeMatched:
		return "matched"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// SniffResult is the result of Sniff. Codec is set only for OutcomeMatched;
// Header is set once the page header decoded.
type SniffResult struct {
	Outcome Outcome
	Codec   Codec
	Header  PageHeader
}

// Sniff inspects the page at the current position of src without consuming
// anything: the peek cursor is reset on entry and on return.
//
// Every format mismatch is reported through the Outcome. An error is
// returned only when the probe could not complete: extractor.ErrNeedMoreData,
// context cancellation or an I/O failure of src.
func Sniff(ctx context.Context, src extractor.Source) (SniffResult, error) {
	src.ResetPeek()
	defer src.ResetPeek()

	var res SniffResult
	err := res.Header.Populate(ctx, src, ModeProbe)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotAPage), err == io.EOF:
		res.Outcome = OutcomeNotAPage
		return res, nil
	case errors.Is(err, ErrBOSMissing):
		res.Outcome = OutcomeBOSMissing
		return res, nil
	case errors.Is(err, ErrMalformedPage), err == io.ErrUnexpectedEOF:
		res.Outcome = OutcomeMalformed
		return res, nil
	default:
		return SniffResult{}, err
	}

	body := make([]byte, res.Header.BodySize())
	if err := src.Peek(ctx, body); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			res.Outcome = OutcomeMalformed
			return res, nil
		}
		return SniffResult{}, err
	}
	codec, ok := Identify(body)
	if !ok {
		res.Outcome = OutcomeUnrecognized
		return res, nil
	}
	res.Outcome = OutcomeMatched
	res.Codec = codec
	return res, nil
}
