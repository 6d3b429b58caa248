// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package lock provides a file-based single-instance lock, so two crawls
// against the same source never run concurrently.
package lock

import (
	"fmt"
	"os"
	"syscall"
	"time"
)

// Info describes the current lock holder.
type Info struct {
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
}

// FileLock is an exclusive, advisory lock backed by a single file via
// flock(2). It is held for the lifetime of one CLI command: a single
// crawl for "crawl", the whole service loop for "run".
type FileLock struct {
	path string
	file *os.File
}

// New creates a FileLock at path. The lock file's parent directory must
// already exist.
func New(path string) *FileLock {
	return &FileLock{path: path}
}

// TryAcquire attempts to take the lock without blocking. It reports false,
// with a nil error, if another process already holds it.
func (l *FileLock) TryAcquire() (bool, error) {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return false, fmt.Errorf("lock: open %s: %w", l.path, err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = f.Close()
		if err == syscall.EWOULDBLOCK {
			return false, nil
		}
		return false, fmt.Errorf("lock: flock %s: %w", l.path, err)
	}

	if err := f.Truncate(0); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("lock: truncate %s: %w", l.path, err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("lock: seek %s: %w", l.path, err)
	}
	if _, err := fmt.Fprintf(f, "%d %d\n", os.Getpid(), time.Now().Unix()); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("lock: write %s: %w", l.path, err)
	}

	l.file = f
	return true, nil
}

// WaitAcquire retries TryAcquire every pollInterval until it succeeds or
// timeout elapses.
func (l *FileLock) WaitAcquire(timeout, pollInterval time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		ok, err := l.TryAcquire()
		if err != nil || ok {
			return ok, err
		}
		if !time.Now().Before(deadline) {
			return false, nil
		}
		time.Sleep(pollInterval)
	}
}

// Release releases the lock. Safe to call on an unlocked FileLock.
func (l *FileLock) Release() {
	if l.file == nil {
		return
	}
	_ = syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	_ = l.file.Close()
	l.file = nil
}

// Holder reads the current lock holder's recorded PID and start time,
// without attempting to acquire the lock. It returns nil, nil if no lock
// file exists.
func (l *FileLock) Holder() (*Info, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock: read %s: %w", l.path, err)
	}

	var pid int
	var ts int64
	if _, err := fmt.Sscanf(string(data), "%d %d", &pid, &ts); err != nil {
		return nil, fmt.Errorf("lock: parse %s: %w", l.path, err)
	}
	return &Info{PID: pid, StartedAt: time.Unix(ts, 0)}, nil
}

// IsStale reports whether the recorded holder's process no longer
// exists, which can happen after a crash that skipped Release.
func (l *FileLock) IsStale() bool {
	info, err := l.Holder()
	if err != nil || info == nil {
		return false
	}
	proc, err := os.FindProcess(info.PID)
	if err != nil {
		return true
	}
	return proc.Signal(syscall.Signal(0)) != nil
}
