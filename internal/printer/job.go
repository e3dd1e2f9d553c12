// Package printer implements the remote-printer dispatch fabric: resolving
// which physical or kitchen-video target an Order belongs to, composing a
// framed print job (optionally carrying a rasterized receipt logo), and
// detecting a dead printer subprocess after repeated read failures (spec
// §4.5).
package printer

import "github.com/viewtouch/posk/internal/money"

// Job is one composed print job ready to hand to a Channel.
type Job struct {
	TargetID int
	Header   string
	Lines    []Line
	Logo     []byte // JPEG-encoded logo from RasterizeLogo, nil if none configured
}

// Line is one printed line: an item, a modifier (indented), or a total.
type Line struct {
	Text   string
	Amount money.Money
	Indent int
}

// NewJob starts a Job addressed to targetID.
func NewJob(targetID int, header string) *Job {
	return &Job{TargetID: targetID, Header: header}
}

// AddLine appends a printed line.
func (j *Job) AddLine(text string, amount money.Money, indent int) {
	j.Lines = append(j.Lines, Line{Text: text, Amount: amount, Indent: indent})
}
