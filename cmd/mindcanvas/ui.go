package main

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/smallnest/mindcanvas/session"
)

var (
	brand  = color.New(color.FgHiGreen, color.Bold)
	subtle = color.New(color.FgHiBlack)
	warn   = color.New(color.FgYellow)
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
)

func printNotices(notices []session.Notice) {
	for _, n := range notices {
		if n.Level == session.NoticeError {
			bad.Printf("  ✗ %s\n", n.Message)
			continue
		}
		warn.Printf("  ! %s\n", n.Message)
	}
}

func okf(format string, args ...any) {
	fmt.Printf("  %s %s\n", good.Sprint("✓"), fmt.Sprintf(format, args...))
}
