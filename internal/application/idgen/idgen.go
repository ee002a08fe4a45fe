// Package idgen mints external application numbers of the form LA<year><5 digits>.
package idgen

import (
	"context"
	"fmt"

	dErrors "github.com/rakesh-tirumalaparapu/zipp/pkg/domain-errors"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/requestcontext"
)

const prefix = "LA"

// Source reports how many applications exist and whether a number is taken.
type Source interface {
	Count(ctx context.Context) (int, error)
	Exists(ctx context.Context, number string) (bool, error)
}

type Generator struct {
	source Source
}

func New(source Source) *Generator {
	return &Generator{source: source}
}

// Format renders an application number. Sequences beyond 99999 widen.
func Format(year, seq int) string {
	return fmt.Sprintf("%s%d%05d", prefix, year, seq)
}

// Next returns the first free number starting at Count()+1, using the year of
// the request clock.
func (g *Generator) Next(ctx context.Context) (string, error) {
	count, err := g.source.Count(ctx)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to count applications")
	}
	year := requestcontext.Now(ctx).Year()

	for seq := count + 1; ; seq++ {
		if err := ctx.Err(); err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeTimeout, "application number generation aborted")
		}
		candidate := Format(year, seq)
		taken, err := g.source.Exists(ctx, candidate)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to check application number")
		}
		if !taken {
			return candidate, nil
		}
	}
}
