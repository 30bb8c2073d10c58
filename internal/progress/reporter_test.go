package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewLineReporter(&buf)
	r.Start(2, "Expanding concepts")
	r.Update(1, "Utility")
	r.Update(2, "Demand")
	r.Finish()
	assert.Equal(t, "Expanding concepts: 2 steps\n[1/2] Utility\n[2/2] Demand\nExpanding concepts: done\n", buf.String())
}

func TestTerminalReporterBeforeStart(t *testing.T) {
	var buf bytes.Buffer
	r := &TerminalReporter{out: &buf}
	r.Update(1, "ignored")
	r.Finish()
	assert.Empty(t, buf.String())
}
