package trace

import (
	"fmt"
	"io"
	"os"

	"github.com/ulikunitz/xz"
)

// Reader is the background trace producer: it decompresses an
// xz-compressed trace file, groups records into instrPerBlock-sized
// batches, and feeds them through a bounded channel to the simulator
// loop. When the trace is exhausted it rewinds to the beginning and
// keeps going — the simulator terminates on instruction count, not on
// trace end.
type Reader struct {
	// Batches delivers decoded instruction batches in file order.
	// Closed when the producer exits, whether from a decode error
	// (check Err) or because Stop was called.
	Batches chan []Instr
	// Err carries at most one fatal trace-format error; read it after
	// Batches is drained/closed. Always closed.
	Err chan error

	file          *os.File
	instrPerBlock int
	stop          chan struct{}
}

// NewReader opens path and starts the producer goroutine.
// instrPerBlock is the batch size; blocksPerQueue bounds the channel
// (the producer blocks when it is full, the simulator loop blocks
// when it is empty).
func NewReader(path string, instrPerBlock, blocksPerQueue int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trace file: %w", err)
	}

	if fi, statErr := f.Stat(); statErr == nil && fi.Size() == 0 {
		f.Close()
		return nil, fmt.Errorf("trace file %q is empty", path)
	}

	r := &Reader{
		Batches:       make(chan []Instr, blocksPerQueue),
		Err:           make(chan error, 1),
		file:          f,
		instrPerBlock: instrPerBlock,
		stop:          make(chan struct{}),
	}
	go r.run()
	return r, nil
}

// Stop signals the producer to exit at its next opportunity and
// releases the trace file. Safe to call more than once. This is the
// Go-channel analogue of the reference implementation's "producer
// observes a send failure": Go channels don't fail a blocked send when
// the receiver stops listening, so an explicit stop signal plays that
// role instead.
func (r *Reader) Stop() {
	select {
	case <-r.stop:
		// already stopped
	default:
		close(r.stop)
	}
}

func (r *Reader) run() {
	defer close(r.Batches)
	defer close(r.Err)
	defer r.file.Close()

	buf := make([]byte, RecordSize*r.instrPerBlock)

	for {
		xzr, err := xz.NewReader(r.file)
		if err != nil {
			r.Err <- fmt.Errorf("opening xz stream: %w", err)
			return
		}

		for {
			n, readErr := io.ReadFull(xzr, buf)
			switch readErr {
			case nil:
				// full buffer
			case io.ErrUnexpectedEOF:
				if n%RecordSize != 0 {
					r.Err <- fmt.Errorf("trace file: partial instruction record (%d stray bytes)", n%RecordSize)
					return
				}
			case io.EOF:
				n = 0
			default:
				r.Err <- fmt.Errorf("decompressing trace: %w", readErr)
				return
			}

			if n > 0 {
				batch := decodeBatch(buf[:n])
				if !r.send(batch) {
					return
				}
			}

			if n < len(buf) {
				break // end of this xz stream — rewind and restart below
			}
		}

		if _, err := r.file.Seek(0, io.SeekStart); err != nil {
			r.Err <- fmt.Errorf("rewinding trace file: %w", err)
			return
		}
	}
}

// send delivers batch, honoring Stop. Returns false if the reader was
// stopped before the batch could be delivered.
func (r *Reader) send(batch []Instr) bool {
	select {
	case r.Batches <- batch:
		return true
	case <-r.stop:
		return false
	}
}
