package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/zsiec/ringvideo/internal/ringvideo/marker"
	"github.com/zsiec/ringvideo/internal/ringvideo/synth"
)

type options struct {
	out        string
	variant    string
	frames     int
	lead       int
	drift      int
	driftEvery int
	damage     int
	tail       int
	seed       int64
}

func main() {
	var opts options
	flag.StringVar(&opts.out, "out", "capture.bin", "Path of the capture to write")
	flag.StringVar(&opts.variant, "variant", "xp-swapped", "Frame variant (monochrome, color, xp, with -swapped suffix)")
	flag.IntVar(&opts.frames, "frames", 36, "Number of frames")
	flag.IntVar(&opts.lead, "lead", 0, "Random bytes before the first frame")
	flag.IntVar(&opts.drift, "drift", 0, "Random bytes inserted between frames")
	flag.IntVar(&opts.driftEvery, "drift-every", 10, "Insert drift after every n-th frame")
	flag.IntVar(&opts.damage, "damage", -1, "Index of a frame whose marker is corrupted")
	flag.IntVar(&opts.tail, "tail", 0, "Bytes of a partial frame appended at the end")
	flag.Int64Var(&opts.seed, "seed", 1, "Noise seed")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	v, err := marker.ParseVariant(opts.variant)
	if err != nil {
		log.WithError(err).Fatal("Invalid variant")
	}
	if opts.frames < 0 || opts.lead < 0 || opts.drift < 0 || opts.tail < 0 {
		log.Fatal("Sizes cannot be negative")
	}

	data, offsets := build(v, opts)
	if err := os.WriteFile(opts.out, data, 0o644); err != nil {
		log.WithError(err).Fatal("Failed to write capture")
	}

	log.WithFields(logrus.Fields{
		"path":    opts.out,
		"variant": v.String(),
		"frames":  len(offsets),
		"bytes":   len(data),
	}).Info("Synthetic capture written")
	for i, off := range offsets {
		log.WithFields(logrus.Fields{"frame": i, "offset": off}).Debug("Frame placed")
	}
	fmt.Println(opts.out)
}

func build(v marker.Variant, opts options) ([]byte, []int64) {
	b := synth.NewBuilder(opts.seed)
	if opts.lead > 0 {
		b.Noise(opts.lead)
	}

	for i := 0; i < opts.frames; i++ {
		if i == opts.damage {
			b.Damaged(v, i)
		} else {
			b.PatternFrame(v, i)
		}
		if opts.drift > 0 && opts.driftEvery > 0 && (i+1)%opts.driftEvery == 0 {
			b.Noise(opts.drift)
		}
	}

	if opts.tail > 0 {
		b.Truncated(v, opts.frames, opts.tail)
	}
	return b.Bytes(), b.Offsets()
}
