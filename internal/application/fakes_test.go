package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vision-classifier/internal/domain/entity"
	"vision-classifier/internal/domain/port"
	"vision-classifier/internal/domain/tensor"
)

// fakeEngine движок, который возвращает заранее заданный выход
type fakeEngine struct {
	in     entity.ModelInputSpec
	out    entity.ModelOutputSpec
	output *entity.Tensor
	err    error
	delay  time.Duration

	calls   atomic.Int32
	running atomic.Int32
	peak    atomic.Int32

	mu    sync.Mutex
	last  *entity.Tensor
	close error
}

func newFakeEngine(t *testing.T, h, w int, output *entity.Tensor) *fakeEngine {
	t.Helper()
	in, err := tensor.NewInputSpec([]int64{1, int64(h), int64(w), 3}, entity.DTypeUint8, entity.Quantization{})
	require.NoError(t, err)
	return &fakeEngine{
		in:     in,
		out:    tensor.NewOutputSpec(output.Shape, output.DType, entity.Quantization{}),
		output: output,
	}
}

func (e *fakeEngine) InputSpec() entity.ModelInputSpec   { return e.in }
func (e *fakeEngine) OutputSpec() entity.ModelOutputSpec { return e.out }

func (e *fakeEngine) Run(ctx context.Context, input *entity.Tensor) (*entity.Tensor, error) {
	e.calls.Add(1)
	n := e.running.Add(1)
	defer e.running.Add(-1)
	for {
		p := e.peak.Load()
		if n <= p || e.peak.CompareAndSwap(p, n) {
			break
		}
	}

	e.mu.Lock()
	e.last = input
	e.mu.Unlock()

	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.output, nil
}

func (e *fakeEngine) Close() error { return e.close }

func floatOutput(v ...float32) *entity.Tensor {
	return &entity.Tensor{Shape: []int64{1, int64(len(v))}, DType: entity.DTypeFloat32, Float32: v}
}

// recordingObserver запоминает снимки
type recordingObserver struct {
	mu    sync.Mutex
	snaps []port.Snapshot
	err   error
}

func (o *recordingObserver) Observe(ctx context.Context, snap port.Snapshot) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.snaps = append(o.snaps, snap)
	return o.err
}

var errObserver = errors.New("disk full")

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
