package main

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"pms7003"
)

type scriptedReader struct {
	results []error
	reads   int
}

func (p *scriptedReader) Read() (pms7003.Reading, error) {
	p.reads++
	if len(p.results) == 0 {
		return pms7003.Reading{PM2_5: uint16(p.reads)}, nil
	}
	err := p.results[0]
	p.results = p.results[1:]
	return pms7003.Reading{PM2_5: uint16(p.reads)}, err
}

func (p *scriptedReader) Stats() pms7003.Stats { return pms7003.Stats{} }

func TestReadLoopCount(t *testing.T) {
	r := &scriptedReader{results: []error{nil, pms7003.ErrChecksum, nil}}
	var got []pms7003.Reading
	errorsSeen := 0
	afterCalls := 0
	err := readLoop(context.Background(), r, loopSettings{
		count:     3,
		retries:   1,
		onReading: func(x pms7003.Reading) { got = append(got, x) },
		onError:   func(error) { errorsSeen++ },
		afterRead: func() { afterCalls++ },
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(got), test.ShouldEqual, 3)
	test.That(t, r.reads, test.ShouldEqual, 4)
	test.That(t, errorsSeen, test.ShouldEqual, 1)
	test.That(t, afterCalls, test.ShouldEqual, 4)
}

func TestReadLoopGivesUp(t *testing.T) {
	r := &scriptedReader{results: []error{pms7003.ErrTimeout, pms7003.ErrFraming, pms7003.ErrChecksum}}
	err := readLoop(context.Background(), r, loopSettings{retries: 2})
	test.That(t, errors.Is(err, pms7003.ErrChecksum), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "giving up after 3")
	test.That(t, r.reads, test.ShouldEqual, 3)
}

func TestReadLoopIOErrorIsFatal(t *testing.T) {
	r := &scriptedReader{results: []error{nil, pms7003.ErrClosed}}
	err := readLoop(context.Background(), r, loopSettings{retries: 100})
	test.That(t, errors.Is(err, pms7003.ErrIO), test.ShouldBeTrue)
	test.That(t, r.reads, test.ShouldEqual, 2)
}

func TestReadLoopCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &scriptedReader{}
	n := 0
	err := readLoop(ctx, r, loopSettings{onReading: func(pms7003.Reading) {
		n++
		if n == 5 {
			cancel()
		}
	}})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.reads, test.ShouldEqual, 5)
}

func TestAppFlags(t *testing.T) {
	app := newApp()
	names := map[string]bool{}
	for _, f := range app.Flags {
		for _, n := range f.Names() {
			names[n] = true
		}
	}
	for _, n := range []string{flagDevice, "s", flagBaud, flagTimeout, flagBackend, flagCount, flagRetries, flagTextfile, flagJSON, flagVerbose} {
		test.That(t, names[n], test.ShouldBeTrue)
	}
}
