// Package watcher re-runs a callback whenever the review corpus file changes.
//
// The file's directory is watched with fsnotify so that editors and download
// tools that replace the file through a rename are picked up too. Bursts of
// events are debounced into one callback run, and the callback never runs
// concurrently with itself.
//
// Example usage:
//
//	w, err := watcher.New("reviews.json.gz", 500*time.Millisecond)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer w.Close()
//
//	err = w.Run(ctx, func(ctx context.Context) error {
//		return recompute(ctx)
//	})
package watcher
