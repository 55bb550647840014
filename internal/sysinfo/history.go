// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sysinfo samples live system statistics for the dashboard.
package sysinfo

// History is a fixed-capacity rolling series of metric values. Pushing
// beyond capacity drops the oldest point. Not safe for concurrent use;
// the Sampler serializes access.
type History struct {
	capacity int
	points   []float64
}

// NewHistory returns a History holding at most capacity points.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		capacity: capacity,
		points:   make([]float64, 0, capacity),
	}
}

// Push appends a value, evicting the oldest point once full.
func (h *History) Push(v float64) {
	if len(h.points) == h.capacity {
		copy(h.points, h.points[1:])
		h.points = h.points[:h.capacity-1]
	}
	h.points = append(h.points, v)
}

// Values returns a copy of the recorded points, oldest first.
func (h *History) Values() []float64 {
	out := make([]float64, len(h.points))
	copy(out, h.points)
	return out
}

// Last returns the most recent point, or 0 when empty.
func (h *History) Last() float64 {
	if len(h.points) == 0 {
		return 0
	}
	return h.points[len(h.points)-1]
}

// Len returns how many points are recorded.
func (h *History) Len() int {
	return len(h.points)
}

// Cap returns the maximum number of points kept.
func (h *History) Cap() int {
	return h.capacity
}
