package parse

import (
	"context"
	"io"

	"github.com/gbdata/gb2260/pkg/division"
	"github.com/gbdata/gb2260/pkg/errors"
	"github.com/gbdata/gb2260/pkg/logging"
	"github.com/gbdata/gb2260/pkg/sources"
)

// Extra parses the hand-maintained corrections CSV. It shares the standard
// column layout, but unlike the other sources an empty file is fine: most
// runs have nothing to correct.
func Extra(ctx context.Context, r io.Reader, file string) (*division.Set, error) {
	set, err := Standard(ctx, r, sources.Extra, file)
	if err != nil {
		if errors.Is(err, errors.ErrEmptyDataset) {
			logging.FromContext(ctx).Debug().Str("file", file).Msg("no corrections loaded")
			return division.NewSet(), nil
		}
		return nil, err
	}
	return set, nil
}
