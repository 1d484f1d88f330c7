package utils

import (
	"github.com/google/uuid"
)

// NewID returns a prefixed unique id ("t" tasks, "n" notes, "s"
// practice session records).
func NewID(prefix string) string {
	return prefix + "_" + uuid.New().String()
}
