package count

import (
	"fmt"
	"log/slog"

	"github.com/mhr3/charbench/buffer"
)

// excerptRadius bounds the hex window logged around the buffer
// midpoint when counts disagree.
const excerptRadius = 16

// Verify checks that the scalar and vector counts of target agree. On
// a mismatch it logs both counts, the run parameters and a hex excerpt
// around the buffer midpoint, then returns false. The caller decides
// whether to keep the run; nothing is aborted here.
func Verify(log *slog.Logger, b *buffer.Buffer, target byte, scalar, vector uint64) bool {
	if scalar == vector {
		return true
	}
	if log == nil {
		log = slog.Default()
	}
	from, to, excerpt := midpointExcerpt(b.Content())
	log.Error("scalar and vector counts disagree",
		slog.String("target", printableByte(target)),
		slog.Uint64("scalar", scalar),
		slog.Uint64("vector", vector),
		slog.Int("content_len", b.ContentLen()),
		slog.Int("alignment", b.Alignment()),
		slog.String("excerpt", excerpt),
		slog.Int("excerpt_from", from),
		slog.Int("excerpt_to", to),
	)
	return false
}

// VerifyAll checks that two full tallies agree on every byte value.
// The first differing value is logged the way Verify logs counts.
func VerifyAll(log *slog.Logger, b *buffer.Buffer, scalar, vector Frequency) bool {
	for v := 0; v < 256; v++ {
		s, sok := scalar[byte(v)]
		x, xok := vector[byte(v)]
		if s == x && sok == xok {
			continue
		}
		if log == nil {
			log = slog.Default()
		}
		from, _, excerpt := midpointExcerpt(b.Content())
		log.Error("full tallies disagree",
			slog.String("value", printableByte(byte(v))),
			slog.Uint64("scalar", s),
			slog.Uint64("vector", x),
			slog.Int("content_len", b.ContentLen()),
			slog.Int("alignment", b.Alignment()),
			slog.String("excerpt", excerpt),
			slog.Int("excerpt_from", from),
		)
		return false
	}
	return true
}

// midpointExcerpt returns a short hex dump centered on the middle of
// content, with the byte offsets it covers.
func midpointExcerpt(content []byte) (from, to int, hex string) {
	mid := len(content) / 2
	from = max(mid-excerptRadius, 0)
	to = min(mid+excerptRadius, len(content))
	return from, to, fmt.Sprintf("% x", content[from:to])
}

func printableByte(c byte) string {
	if c >= minPrintable && c <= maxPrintable {
		return fmt.Sprintf("%q", c)
	}
	return fmt.Sprintf("0x%02x", c)
}

// Printable ASCII bounds, as written by the buffer filler.
const (
	minPrintable = 0x20
	maxPrintable = 0x7e
)
