package output

import (
	"io"
	"path/filepath"

	"github.com/cheggaaa/pb/v3"

	"github.com/tidyfs/tidyfs/pkg/models"
)

// barTemplate shows a label, the bar, counts and the current file.
const barTemplate = `{{string . "label"}} {{bar . "[" "=" ">" " " "]"}} {{counters . }} {{string . "file"}}`

// Bar wraps a terminal progress bar for the long phases: hashing
// candidates and executing a batch. Its methods match the progress
// callback signatures, so a Bar can be handed to SetProgress directly.
type Bar struct {
	bar *pb.ProgressBar
}

// NewBar starts a progress bar over total steps. A nil writer or a
// non-positive total yields a no-op bar, so callers never need to
// branch on quiet mode.
func NewBar(w io.Writer, total int, label string) *Bar {
	if w == nil || total <= 0 {
		return &Bar{}
	}

	bar := pb.New(total)
	bar.SetWriter(w)
	bar.SetTemplateString(barTemplate)
	bar.Set("label", label)
	bar.Set("file", "")
	bar.Start()
	return &Bar{bar: bar}
}

// Step advances the bar to done of total.
func (b *Bar) Step(done, total int) {
	if b.bar == nil {
		return
	}
	b.bar.SetTotal(int64(total))
	b.bar.SetCurrent(int64(done))
}

// StepOp advances the bar and shows the file just processed.
func (b *Bar) StepOp(done, total int, op *models.PlannedOperation) {
	if b.bar == nil {
		return
	}
	if op != nil {
		b.bar.Set("file", filepath.Base(op.Source))
	}
	b.bar.SetTotal(int64(total))
	b.bar.SetCurrent(int64(done))
}

// Finish stops the bar. Safe on a no-op bar.
func (b *Bar) Finish() {
	if b.bar != nil {
		b.bar.Finish()
	}
}
