// Package queue provides an unbounded multi-producer, multi-consumer queue
// used as the dispatch channel between job submitters and pool workers.
//
// A queue has two kinds of endpoints:
//
//   - Sender: Send never blocks; the buffer grows as needed.
//   - Receiver: Recv blocks until a value arrives or the queue is closed.
//
// Endpoints are reference counted. Receiver.Clone adds a receiving endpoint
// and Close removes an endpoint of either kind.
// When the last Sender closes, receivers keep draining the buffered values
// and then Recv reports closure. When the last Receiver closes, Send fails
// with ErrChannelClosed.
//
// # Basic Usage
//
//	tx, rx := queue.New[func()]()
//	go func() {
//	    for {
//	        job, ok := rx.Recv()
//	        if !ok {
//	            return
//	        }
//	        job()
//	    }
//	}()
//	_ = tx.Send(func() { fmt.Println("hello") })
//	tx.Close()
package queue
