package export

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/crypto/argon2"
)

// HashType represents the different hashing algorithms available.
type HashType string

const (
	// HashTypeArgon2id uses the Argon2id algorithm for hashing.
	HashTypeArgon2id HashType = "argon2id"
	// HashTypeSHA256 uses the SHA256 algorithm for hashing.
	HashTypeSHA256 HashType = "sha256"
)

// HashID converts a single identifier to a pseudonym using the specified
// algorithm with the provided salt. The same identifier and salt always
// produce the same pseudonym, so one subject stays one subject across
// every file in a bundle.
func HashID(id, salt string, hashType HashType, iterations, memory uint32) string {
	idBytes := []byte(id)

	var hash []byte

	switch hashType {
	case HashTypeArgon2id:
		// Use Argon2id with specified parameters
		hash = argon2.IDKey(idBytes, []byte(salt), iterations, memory*1024, 1, 32)
	case HashTypeSHA256:
		// Iterative SHA256 hashing with salt
		hash = []byte(salt)

		h := sha256.New()
		for range iterations {
			h.Reset()
			h.Write(idBytes)
			h.Write(hash)
			hash = h.Sum(nil)
		}
	}

	return hex.EncodeToString(hash)
}

// hashIDs hashes multiple identifiers concurrently, preserving input
// order. Each worker writes its own slice slot, so no result collection
// pass is needed.
func hashIDs(ids []string, salt string, hashType HashType, concurrency int64, iterations, memory uint32) []string {
	if len(ids) == 0 {
		return nil
	}

	if concurrency < 1 {
		concurrency = 1
	}

	var (
		hashes    = make([]string, len(ids))
		processed atomic.Int64
		p         = pool.New().WithMaxGoroutines(int(concurrency))
	)

	stop := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		reportHashProgress(len(ids), &processed, stop)
	}()

	for i, id := range ids {
		p.Go(func() {
			hashes[i] = HashID(id, salt, hashType, iterations, memory)
			processed.Add(1)
		})
	}

	p.Wait()
	close(stop)
	<-finished

	return hashes
}

// reportHashProgress prints hashing progress with an ETA until stop
// closes, then prints the total elapsed time.
func reportHashProgress(total int, processed *atomic.Int64, stop <-chan struct{}) {
	start := time.Now()
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	fmt.Printf("  0/%d (0%%) ETA: calculating...", total)

	for {
		select {
		case <-stop:
			fmt.Printf("\r  %d/%d (100%%) Time: %s        \n",
				total, total, formatDuration(time.Since(start)))

			return
		case <-ticker.C:
			n := int(processed.Load())
			if n == 0 {
				continue
			}

			remaining := time.Duration(total-n) * (time.Since(start) / time.Duration(n))

			eta := formatDuration(remaining)
			if remaining < time.Second {
				eta = "<1s"
			}

			fmt.Printf("\r  %d/%d (%d%%) ETA: %s        ", n, total, (n*100)/total, eta)
		}
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)

	hours := int64(d.Hours())
	minutes := int64(d.Minutes()) % 60
	seconds := int64(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	}

	if minutes > 0 {
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	}

	return fmt.Sprintf("%ds", seconds)
}
