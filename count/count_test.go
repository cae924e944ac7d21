package count

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/mhr3/charbench/buffer"
)

func fillBuffer(t testing.TB, length, alignment int, seed uint64) *buffer.Buffer {
	t.Helper()
	b, err := buffer.Alloc(length, alignment)
	if err != nil {
		t.Fatalf("Alloc(%d, %d) = %v", length, alignment, err)
	}
	buffer.NewFiller(seed).Fill(b)
	return b
}

func refCount(p []byte, c byte) uint64 {
	var n uint64
	for _, b := range p {
		if b == c {
			n++
		}
	}
	return n
}

var counters = []Counter{ScalarCounter{}, VectorCounter{}}

func TestCountTarget(t *testing.T) {
	// the canonical configuration: seed 42, 1KB at 32-byte alignment
	b := fillBuffer(t, 1024, 32, 42)

	for _, target := range []byte{'a', 'e', ' ', '~', 0x00, 0x80, 0xff} {
		exp := refCount(b.Content(), target)
		for _, ctr := range counters {
			got, m := ctr.CountTarget(b, target)
			if got != exp {
				t.Errorf("%s: CountTarget(%#02x) = %d; want %d", ctr.Name(), target, got, exp)
			}
			if m.ContentLen != 1023 || m.Length != 1024 || m.Alignment != 32 {
				t.Errorf("%s: metrics = %+v; want len 1024, content 1023, align 32", ctr.Name(), m)
			}
		}
	}
}

func TestCountTargetMatches(t *testing.T) {
	scalar, vector := ScalarCounter{}, VectorCounter{}

	for _, length := range []int{16, 64, 1024, 4096, 65536} {
		for _, align := range []int{1, 8, 32, 64} {
			b := fillBuffer(t, length, align, 42)
			for target := byte(' '); target <= '~'; target++ {
				s, _ := scalar.CountTarget(b, target)
				v, _ := vector.CountTarget(b, target)
				if s != v {
					t.Fatalf("len=%d align=%d target=%q: scalar %d != vector %d", length, align, target, s, v)
				}
			}
		}
	}
}

func TestCountTargetBoundaries(t *testing.T) {
	// content lengths around the 16-byte block edges
	for _, contentLen := range []int{15, 16, 17, 31, 32} {
		b := fillBuffer(t, contentLen+1, 16, 7)
		for _, target := range []byte{'a', ' ', '~'} {
			exp := refCount(b.Content(), target)
			for _, ctr := range counters {
				if got, _ := ctr.CountTarget(b, target); got != exp {
					t.Errorf("%s: content=%d CountTarget(%q) = %d; want %d", ctr.Name(), contentLen, target, got, exp)
				}
			}
		}
	}
}

func TestCountTargetIdempotent(t *testing.T) {
	b := fillBuffer(t, 4096, 32, 42)
	for _, ctr := range counters {
		first, _ := ctr.CountTarget(b, 'a')
		second, _ := ctr.CountTarget(b, 'a')
		if first != second {
			t.Errorf("%s: repeated CountTarget('a') = %d then %d", ctr.Name(), first, second)
		}
	}
}

func TestCountTargetSentinelExcluded(t *testing.T) {
	// content is printable, so the only zero byte is the sentinel and
	// it must never be counted
	b := fillBuffer(t, 1024, 32, 42)
	for _, ctr := range counters {
		if got, _ := ctr.CountTarget(b, 0x00); got != 0 {
			t.Errorf("%s: CountTarget(0x00) = %d; want 0", ctr.Name(), got)
		}
	}
}

func TestCountAll(t *testing.T) {
	b := fillBuffer(t, 1024, 32, 42)

	for _, ctr := range counters {
		freq, m := ctr.CountAll(b)

		if total := freq.Total(); total != uint64(b.ContentLen()) {
			t.Errorf("%s: Total() = %d; want %d", ctr.Name(), total, b.ContentLen())
		}
		if m.Unique != freq.Unique() {
			t.Errorf("%s: metrics.Unique = %d; want %d", ctr.Name(), m.Unique, freq.Unique())
		}
		for v, c := range freq {
			if exp := refCount(b.Content(), v); c != exp {
				t.Errorf("%s: freq[%#02x] = %d; want %d", ctr.Name(), v, c, exp)
			}
		}
		if _, ok := freq[0x00]; ok {
			t.Errorf("%s: sentinel counted in full tally", ctr.Name())
		}
	}
}

func TestCountAllMatches(t *testing.T) {
	scalar, vector := ScalarCounter{}, VectorCounter{}

	b := fillBuffer(t, 8192, 32, 9)
	sf, _ := scalar.CountAll(b)
	vf, _ := vector.CountAll(b)
	if !VerifyAll(discardLogger(), b, sf, vf) {
		t.Fatal("full tallies disagree on printable content")
	}

	// multi-byte content exercises values >= 0x80
	buffer.NewFiller(9).FillUTF8(b)
	sf, _ = scalar.CountAll(b)
	vf, _ = vector.CountAll(b)
	if !VerifyAll(discardLogger(), b, sf, vf) {
		t.Fatal("full tallies disagree on UTF-8 content")
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
}

func TestVerify(t *testing.T) {
	b := fillBuffer(t, 256, 16, 1)

	var out bytes.Buffer
	log := slog.New(slog.NewTextHandler(&out, nil))

	if !Verify(log, b, 'a', 10, 10) {
		t.Error("Verify(10, 10) = false; want true")
	}
	if out.Len() != 0 {
		t.Errorf("Verify logged on agreement: %s", out.String())
	}

	if Verify(log, b, 'a', 10, 11) {
		t.Error("Verify(10, 11) = true; want false")
	}
	for _, want := range []string{"disagree", "scalar=10", "vector=11", "excerpt"} {
		if !bytes.Contains(out.Bytes(), []byte(want)) {
			t.Errorf("mismatch log misses %q: %s", want, out.String())
		}
	}
}

func TestVerifyAll(t *testing.T) {
	b := fillBuffer(t, 256, 16, 1)

	var out bytes.Buffer
	log := slog.New(slog.NewTextHandler(&out, nil))

	scalar := Frequency{'a': 3, 'b': 5}
	same := Frequency{'a': 3, 'b': 5}
	if !VerifyAll(log, b, scalar, same) {
		t.Error("VerifyAll(equal) = false; want true")
	}

	differs := Frequency{'a': 3, 'b': 6}
	if VerifyAll(log, b, scalar, differs) {
		t.Error("VerifyAll(differs) = true; want false")
	}

	missing := Frequency{'a': 3}
	if VerifyAll(log, b, scalar, missing) {
		t.Error("VerifyAll(missing) = true; want false")
	}

	extra := Frequency{'a': 3, 'b': 5, 'c': 1}
	if VerifyAll(log, b, scalar, extra) {
		t.Error("VerifyAll(extra) = true; want false")
	}
}

func TestForceKernel(t *testing.T) {
	prev := KernelName()
	defer ForceKernel(prev)

	if err := ForceKernel("scalar"); err != nil {
		t.Fatalf("ForceKernel(scalar) = %v", err)
	}
	if KernelName() != "scalar" {
		t.Fatalf("KernelName() = %q after forcing scalar", KernelName())
	}

	// the vector counter still counts correctly on the fallback
	b := fillBuffer(t, 1024, 32, 42)
	got, _ := VectorCounter{}.CountTarget(b, 'a')
	if exp := refCount(b.Content(), 'a'); got != exp {
		t.Errorf("forced scalar CountTarget('a') = %d; want %d", got, exp)
	}
	if name := (VectorCounter{}).Name(); name != "vector/scalar" {
		t.Errorf("Name() = %q; want vector/scalar", name)
	}

	if err := ForceKernel("warp9"); !errors.Is(err, ErrCapability) {
		t.Errorf("ForceKernel(warp9) = %v; want ErrCapability", err)
	}
}

func TestKernels(t *testing.T) {
	infos := Kernels()
	if len(infos) < 2 {
		t.Fatalf("Kernels() returned %d entries; want at least scalar and swar", len(infos))
	}

	active := 0
	byName := map[string]KernelInfo{}
	for _, info := range infos {
		byName[info.Name] = info
		if info.Active {
			active++
		}
	}
	if active != 1 {
		t.Errorf("%d kernels active; want exactly 1", active)
	}
	if !byName["scalar"].Available {
		t.Error("scalar kernel unavailable")
	}
	if !byName["swar"].Available {
		t.Error("swar kernel unavailable")
	}
}

func TestFrequencyOrders(t *testing.T) {
	freq := Frequency{'a': 5, 'b': 9, 'c': 5, 'z': 1}

	byCount := freq.ByCount()
	wantCount := []Entry{{'b', 9}, {'a', 5}, {'c', 5}, {'z', 1}}
	if len(byCount) != len(wantCount) {
		t.Fatalf("ByCount() has %d entries; want %d", len(byCount), len(wantCount))
	}
	for i, e := range wantCount {
		if byCount[i] != e {
			t.Errorf("ByCount()[%d] = %v; want %v", i, byCount[i], e)
		}
	}

	byValue := freq.ByValue()
	wantValue := []Entry{{'a', 5}, {'b', 9}, {'c', 5}, {'z', 1}}
	for i, e := range wantValue {
		if byValue[i] != e {
			t.Errorf("ByValue()[%d] = %v; want %v", i, byValue[i], e)
		}
	}
}

func TestMetricsConversions(t *testing.T) {
	m := Metrics{Elapsed: 2_000_000, Length: 1 << 20, ContentLen: 1<<20 - 1}
	if got := m.Milliseconds(); got != 2.0 {
		t.Errorf("Milliseconds() = %v; want 2.0", got)
	}
	// 1MB in 2ms is 500 MB/s
	if got := m.ThroughputMBps(); got != 500.0 {
		t.Errorf("ThroughputMBps() = %v; want 500", got)
	}

	var zero Metrics
	if got := zero.ThroughputMBps(); got != 0 {
		t.Errorf("zero ThroughputMBps() = %v; want 0", got)
	}
}
