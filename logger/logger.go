// Package logger keeps a bounded central log of tagged entries. It is
// where the emulator records faults that hardware would silently
// ignore, such as writes to cartridge ROM.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Entry is a single line in the log.
type Entry struct {
	Timestamp time.Time
	Tag       string
	Detail    string
	count     int // times logged back to back
}

func (e Entry) String() string {
	if e.count > 1 {
		return fmt.Sprintf("%s: %s (repeat x%d)\n", e.Tag, e.Detail, e.count)
	}
	return fmt.Sprintf("%s: %s\n", e.Tag, e.Detail)
}

// ring holds the newest len(buf) entries. The oldest lives at
// buf[start] and there are n of them.
type ring struct {
	mu       sync.Mutex
	buf      []Entry
	start, n int
	echo     io.Writer
}

func newRing(size int) *ring {
	return &ring{buf: make([]Entry, size)}
}

// at returns the i'th oldest entry.
func (r *ring) at(i int) *Entry {
	return &r.buf[(r.start+i)%len(r.buf)]
}

func (r *ring) add(tag, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tag = strings.ReplaceAll(tag, "\n", "")
	detail = strings.ReplaceAll(detail, "\n", "")

	if r.n == 0 || r.at(r.n-1).Tag != tag || r.at(r.n-1).Detail != detail {
		if r.n < len(r.buf) {
			r.n++
		} else {
			r.start = (r.start + 1) % len(r.buf)
		}
		*r.at(r.n - 1) = Entry{Tag: tag, Detail: detail}
	}

	e := r.at(r.n - 1)
	e.count++
	e.Timestamp = time.Now()

	if r.echo != nil {
		fmt.Fprint(r.echo, e)
	}
}

func (r *ring) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.start, r.n = 0, 0
}

// tail writes the newest number entries, oldest first. A negative
// number writes everything.
func (r *ring) tail(output io.Writer, number int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if number < 0 || number > r.n {
		number = r.n
	}
	for i := r.n - number; i < r.n; i++ {
		fmt.Fprint(output, r.at(i))
	}
}

func (r *ring) setEcho(output io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.echo = output
}

// only one central log for the entire application.
var central = newRing(maxCentral)

// maximum number of entries in the central logger.
const maxCentral = 256

// Log adds an entry to the central logger.
func Log(tag, detail string) {
	central.add(tag, detail)
}

// Logf adds a formatted entry to the central logger.
func Logf(tag, format string, args ...interface{}) {
	central.add(tag, fmt.Sprintf(format, args...))
}

// Clear all entries from the central logger.
func Clear() {
	central.clear()
}

// Write the contents of the central logger to output.
func Write(output io.Writer) {
	central.tail(output, -1)
}

// Tail writes the last number entries to output.
func Tail(output io.Writer, number int) {
	central.tail(output, number)
}

// SetEcho copies every new entry to output as it is logged. A nil
// output turns echoing off.
func SetEcho(output io.Writer) {
	central.setEcho(output)
}
