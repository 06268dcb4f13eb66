// Package input turns raw terminal input into cart actions: it tells scanner
// bursts from human typing, dispatches the keyboard shortcut table and resolves
// product lookups.
package input

import (
	"strings"
	"time"
	"unicode/utf8"
)

// KeyEvent is one keystroke as reported by the POS UI.
type KeyEvent struct {
	Key  string    `json:"key"`
	Ctrl bool      `json:"ctrl,omitempty"`
	At   time.Time `json:"at"`
}

// ClassifierConfig tunes the scanner heuristic.
type ClassifierConfig struct {
	MaxInterval time.Duration
	MinLength   int
	MaxLength   int
}

func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{MaxInterval: 50 * time.Millisecond, MinLength: 8, MaxLength: 14}
}

// Classifier buffers keystrokes that arrive faster than MaxInterval and reports
// the buffer as a barcode when it ends within the length window. It is not safe
// for concurrent use.
type Classifier struct {
	cfg  ClassifierConfig
	buf  strings.Builder
	n    int
	last time.Time
}

func NewClassifier(cfg ClassifierConfig) *Classifier {
	def := DefaultClassifierConfig()
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = def.MaxInterval
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = def.MinLength
	}
	if cfg.MaxLength < cfg.MinLength {
		cfg.MaxLength = max(def.MaxLength, cfg.MinLength)
	}
	return &Classifier{cfg: cfg}
}

func (c *Classifier) Config() ClassifierConfig { return c.cfg }

// Feed consumes one keystroke. Enter completes the buffer: the code is returned
// when it is within the length window. A key arriving MaxInterval or more after
// the previous one starts a new buffer, so human typing never accumulates into a scan.
func (c *Classifier) Feed(ev KeyEvent) (string, bool) {
	if ev.Key == "Enter" {
		code, ok := c.complete()
		c.reset()
		return code, ok
	}
	if ev.Ctrl || utf8.RuneCountInString(ev.Key) != 1 {
		c.reset()
		return "", false
	}
	if c.n > 0 && ev.At.Sub(c.last) >= c.cfg.MaxInterval {
		c.reset()
	}
	c.buf.WriteString(ev.Key)
	c.n++
	c.last = ev.At
	return "", false
}

// Flush completes a buffered scan once the line has been idle for at least
// MaxInterval, for scanners that send no Enter suffix.
func (c *Classifier) Flush(now time.Time) (string, bool) {
	if c.n == 0 || now.Sub(c.last) < c.cfg.MaxInterval {
		return "", false
	}
	code, ok := c.complete()
	c.reset()
	return code, ok
}

// Pending reports whether a burst is being buffered.
func (c *Classifier) Pending() bool { return c.n > 0 }

func (c *Classifier) complete() (string, bool) {
	if c.n < c.cfg.MinLength || c.n > c.cfg.MaxLength {
		return "", false
	}
	return c.buf.String(), true
}

func (c *Classifier) reset() {
	c.buf.Reset()
	c.n = 0
	c.last = time.Time{}
}
