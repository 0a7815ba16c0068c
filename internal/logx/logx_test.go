package logx

import (
	"bytes"
	"strings"
	"testing"
)

func TestComponentPrefixesMessages(t *testing.T) {
	var buf bytes.Buffer
	orig := output
	output = &buf
	defer func() { output = orig }()

	log := Component("search")
	log.Print("hello")

	line := buf.String()
	if !strings.HasPrefix(line, "[search] ") {
		t.Errorf("expected the line to start with \"[search] \", got: %q", line)
	}
	if !strings.HasSuffix(strings.TrimRight(line, "\n"), "hello") {
		t.Errorf("expected the line to end with \"hello\", got: %q", line)
	}
}
