package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mhr3/charbench/bench"
	"github.com/mhr3/charbench/config"
	"github.com/mhr3/charbench/count"
)

func TestConsoleRunPlain(t *testing.T) {
	var out bytes.Buffer
	NewConsole(&out, true).Run(testResult())
	s := out.String()

	assert.Contains(t, s, "== benchmark scalar (verified)")
	assert.Contains(t, s, "impl:")
	assert.Contains(t, s, "1KB (1023 counted)")
	assert.Contains(t, s, "target:")
	assert.Contains(t, s, "occurrences:   33")
	assert.Contains(t, s, "mean:")
	assert.Contains(t, s, "3.0000 ms")
	assert.Contains(t, s, "throughput:")
}

func TestConsoleRunUnverified(t *testing.T) {
	res := testResult()
	res.Verified = false

	var out bytes.Buffer
	NewConsole(&out, true).Run(res)
	assert.Contains(t, out.String(), "NOT VERIFIED")
}

func TestConsoleComparisonPlain(t *testing.T) {
	cmp := &bench.Comparison{Scalar: testResult(), Vector: testResult(), Valid: true}

	var out bytes.Buffer
	NewConsole(&out, true).Comparison(cmp)
	s := out.String()

	assert.Contains(t, s, "speedup: 1.00x (valid)")

	cmp.Valid = false
	out.Reset()
	NewConsole(&out, true).Comparison(cmp)
	assert.Contains(t, out.String(), "(INVALID)")
}

func TestConsoleSweepPlain(t *testing.T) {
	cmps := []*bench.Comparison{
		{Scalar: testResult(), Vector: testResult(), Valid: true},
	}

	var out bytes.Buffer
	NewConsole(&out, true).Sweep(cmps)
	s := out.String()

	assert.Contains(t, s, "== size sweep, 1 points")
	assert.Contains(t, s, "scalar mean")
	assert.Contains(t, s, "1KB")
	assert.Contains(t, s, "1.00x")
}

func TestConsoleFrequencyPlain(t *testing.T) {
	freq := count.Frequency{}
	for c := byte('a'); c <= 'p'; c++ { // 16 distinct values
		freq[c] = uint64(c)
	}

	var out bytes.Buffer
	NewConsole(&out, true).Frequency(freq, false)
	s := out.String()

	assert.Contains(t, s, "16 distinct values")
	assert.Contains(t, s, "and 6 more values")
	assert.NotContains(t, s, "category")

	out.Reset()
	NewConsole(&out, true).Frequency(freq, true)
	s = out.String()
	assert.Contains(t, s, "category")
	assert.Contains(t, s, "lowercase")
	assert.NotContains(t, s, "more values")
}

func TestConsoleCapabilitiesPlain(t *testing.T) {
	infos := []count.KernelInfo{
		{Name: "scalar", Available: true},
		{Name: "swar", Available: true, Active: true},
		{Name: "sse2", Available: false},
	}

	var out bytes.Buffer
	NewConsole(&out, true).Capabilities(infos, false)
	s := out.String()

	assert.Contains(t, s, "swar     active")
	assert.Contains(t, s, "sse2     unavailable")
	assert.Contains(t, s, "selection: auto")

	out.Reset()
	NewConsole(&out, true).Capabilities(infos, true)
	assert.Contains(t, out.String(), "CHARBENCH_KERNEL")
}

func TestConsoleStyledSmoke(t *testing.T) {
	// styled path must produce output without panicking; the exact
	// bytes depend on the terminal profile
	var out bytes.Buffer
	c := NewConsole(&out, false)
	c.Run(testResult())
	c.Sweep([]*bench.Comparison{{Scalar: testResult(), Vector: testResult(), Valid: true}})
	c.Frequency(count.Frequency{'a': 1}, true)
	assert.NotZero(t, out.Len())
}

func TestConsoleRunAllMode(t *testing.T) {
	res := testResult()
	res.Config.Mode = config.ModeAll
	res.Count = 0
	res.Frequency = count.Frequency{'a': 500, 'b': 523}

	var out bytes.Buffer
	NewConsole(&out, true).Run(res)
	s := out.String()

	assert.Contains(t, s, "full tally")
	assert.Contains(t, s, "unique values: 2")
	assert.NotContains(t, s, "occurrences")
}

func TestCharDisplay(t *testing.T) {
	tests := []struct {
		c   byte
		exp string
	}{
		{' ', "SPACE"},
		{'\t', "TAB"},
		{'\n', "NEWLINE"},
		{'\r', "CR"},
		{'a', "a"},
		{'~', "~"},
		{'!', "!"},
		{0x00, "0x00"},
		{0x7f, "0x7F"},
		{0xff, "0xFF"},
	}
	for _, tt := range tests {
		if got := charDisplay(tt.c); got != tt.exp {
			t.Errorf("charDisplay(%#02x) = %q; want %q", tt.c, got, tt.exp)
		}
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		c   byte
		exp string
	}{
		{'A', "uppercase"},
		{'z', "lowercase"},
		{'5', "digit"},
		{' ', "whitespace"},
		{'\n', "whitespace"},
		{'!', "punctuation"},
		{'~', "punctuation"},
		{0x01, "control"},
		{0x7f, "control"},
		{0x80, "extended"},
		{0xff, "extended"},
	}
	for _, tt := range tests {
		if got := category(tt.c); got != tt.exp {
			t.Errorf("category(%#02x) = %q; want %q", tt.c, got, tt.exp)
		}
	}
}

func TestSizeString(t *testing.T) {
	tests := []struct {
		n   int
		exp string
	}{
		{512, "512B"},
		{1024, "1KB"},
		{32 << 10, "32KB"},
		{1 << 20, "1MB"},
		{32 << 20, "32MB"},
		{1500, "1500B"},
	}
	for _, tt := range tests {
		if got := sizeString(tt.n); got != tt.exp {
			t.Errorf("sizeString(%d) = %q; want %q", tt.n, got, tt.exp)
		}
	}
}
