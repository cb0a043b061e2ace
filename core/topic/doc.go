// Package topic implements a fixed-slot broadcast message channel: a named
// circular buffer shared by concurrent writers and concurrent readers, where
// every message published is visible to every reader open at publish time
// before its storage is reclaimed.
//
// # Core Components
//
// Topic owns the circular buffer, the shared write and tail cursors, the
// broadcast gate, and the wait/notify machinery. All of its state is guarded
// by a single mutex; blocking operations release the mutex while suspended
// and re-check their condition after every wakeup.
//
// Handle represents one open reader or writer session. A handle is exactly
// one of the two kinds, owns a private cursor into the shared buffer, and is
// obtained from Topic.Open. A new reader's cursor starts at the current write
// position, so it only observes messages published after it opened.
//
// The broadcast gate counts, for the currently unreclaimed region of the
// buffer, how many readers open at publish time have not yet issued a read
// past it. Storage is reclaimed, and writers unblocked, only when that count
// reaches zero. One slow reader therefore stalls reclamation for all.
//
// # Basic Usage
//
// Configure a topic while no handles are open, then open handles and exchange
// fixed-slot messages:
//
//	tp := topic.New("sensors")
//	if err := tp.Configure(4, 16); err != nil {
//		log.Fatal(err)
//	}
//
//	w, _ := tp.Open(topic.Writer)
//	r, _ := tp.Open(topic.Reader)
//	defer w.Close()
//	defer r.Close()
//
//	n, err := w.Write(ctx, []byte{1, 0, 0, 0})
//	// ...
//	buf := make([]byte, 4)
//	n, err = r.Read(ctx, buf)
//
// # Blocking, Non-Blocking and Polling
//
// Write blocks while the buffer is full; Read blocks while the handle has no
// unread data. Both honor context cancellation: a wait cut short by the
// context returns an error matching both ErrInterrupted and ctx.Err(), with
// topic state untouched. A handle switched to non-blocking mode with
// SetNonblocking returns ErrWouldBlock instead of suspending.
//
// Poll reports readiness without blocking. Topic.Readable and Topic.Writable
// return signal channels that are closed on the next state change, so callers
// can wait for readiness across many topics at once.
//
// # Delivery Semantics
//
// The gate is reader-count based, not content based: it is decremented once
// per read call, not once per byte consumed or per distinct reader identity.
// A reader draining one published region with several short reads causes the
// gate to open before the region is fully consumed by everyone. Likewise a
// reader that closes while the gate still expects a read from it leaves the
// gate waiting; see Handle.Close. Callers that need stronger guarantees must
// frame their reads to whole published regions.
package topic
