package chunk

// Stream is a channel stage turning records into assembler events.
type Stream func(in <-chan []byte) <-chan Event

// NewStream creates a stage with its own assembler. The output channel is
// closed once the input is closed and drained.
func NewStream(capacity, bufSize int) Stream {
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan []byte) <-chan Event {
		out := make(chan Event, bufSize)

		go func() {
			defer close(out)

			a := NewAssembler(capacity)
			for rec := range in {
				out <- a.Feed(rec)
			}
		}()

		return out
	}
}

// Messages keeps only the events that carry a whole message: passthrough
// records, completed payloads and overflows.
func Messages(in <-chan Event) <-chan Event {
	out := make(chan Event, cap(in))

	go func() {
		defer close(out)

		for ev := range in {
			switch ev.Kind {
			case Passthrough, Complete, Overflow:
				out <- ev
			}
		}
	}()

	return out
}
