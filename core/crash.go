package core

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync"
)

var (
	crashMu       sync.Mutex
	crashCleanups []func()
)

// OnCrash registers a cleanup to run before a crash report is printed.
// The driver registers the screen teardown here so the stack trace is
// not swallowed by the alternate screen buffer.
func OnCrash(fn func()) {
	crashMu.Lock()
	crashCleanups = append(crashCleanups, fn)
	crashMu.Unlock()
}

// HandleCrash is the unified panic handler: restore the terminal, print
// the stack trace, exit.
func HandleCrash(r any) {
	if r == nil {
		return
	}

	crashMu.Lock()
	cleanups := crashCleanups
	crashCleanups = nil
	crashMu.Unlock()
	for _, fn := range cleanups {
		fn()
	}

	// Force flush stdout/stderr before printing to stderr
	os.Stdout.Sync()
	os.Stderr.Sync()

	fmt.Fprintf(os.Stderr, "\r\n\x1b[31mCRASH DETECTED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())

	os.Stderr.Sync()
	os.Exit(1)
}

// Go runs a function in a new goroutine with panic recovery.
// Use this instead of the 'go' keyword to ensure terminal cleanup on crash.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
