package models

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID returns a backend-independent document id.
func NewID() string {
	return uuid.NewString()
}

// LegacyID builds ids of the shape {prefix}_{epochMillis}_{randomBase36}
// used by older clients.
func LegacyID(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_%d_%s", prefix, now.UnixMilli(), randomBase36(9))
}

// ParseLegacyID splits a legacy id. The prefix may itself contain underscores.
func ParseLegacyID(id string) (prefix string, createdAt time.Time, ok bool) {
	parts := strings.Split(id, "_")
	if len(parts) < 3 {
		return "", time.Time{}, false
	}
	suffix := parts[len(parts)-1]
	if suffix == "" || strings.Trim(suffix, base36) != "" {
		return "", time.Time{}, false
	}
	millis, err := strconv.ParseInt(parts[len(parts)-2], 10, 64)
	if err != nil || millis <= 0 {
		return "", time.Time{}, false
	}
	prefix = strings.Join(parts[:len(parts)-2], "_")
	if prefix == "" {
		return "", time.Time{}, false
	}
	return prefix, time.UnixMilli(millis), true
}

// DailyAssignmentID is the deterministic key of a driver's plan for one day.
func DailyAssignmentID(driverID, date string) string {
	return driverID + "_" + date
}

// AttendanceID is the deterministic key of a worker's attendance for one day.
func AttendanceID(workerID, date string) string {
	return workerID + "_" + date
}

func randomBase36(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(base36)))
	for i := range b {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			b[i] = '0'
			continue
		}
		b[i] = base36[v.Int64()]
	}
	return string(b)
}
