package contracts

import (
	"errors"
	"strings"
)

// Role is the client role carried in the authenticate handshake.
type Role string

const (
	RoleUser   Role = "user"
	RoleWorker Role = "worker"
)

var ErrInvalidRole = errors.New("invalid role")

// ParseRole normalizes (lowercases+trims) and validates a role string.
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	if role.Valid() {
		return role, nil
	}
	return "", ErrInvalidRole
}

// Valid reports whether role is one of the allowed role constants.
func (role Role) Valid() bool {
	switch role {
	case RoleUser, RoleWorker:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Role.
func (role Role) String() string {
	return string(role)
}

// WorkerStatus is the availability state a worker client reports upstream.
type WorkerStatus string

const (
	WorkerStatusAvailable WorkerStatus = "available"
	WorkerStatusBusy      WorkerStatus = "busy"
	WorkerStatusOffline   WorkerStatus = "offline"
)

var ErrInvalidWorkerStatus = errors.New("invalid worker status")

// ParseWorkerStatus normalizes and validates a worker status string.
func ParseWorkerStatus(s string) (WorkerStatus, error) {
	status := WorkerStatus(strings.ToLower(strings.TrimSpace(s)))
	if status.Valid() {
		return status, nil
	}
	return "", ErrInvalidWorkerStatus
}

// Valid reports whether status is one of the allowed worker status constants.
func (status WorkerStatus) Valid() bool {
	switch status {
	case WorkerStatusAvailable, WorkerStatusBusy, WorkerStatusOffline:
		return true
	default:
		return false
	}
}

// String returns the string representation of the WorkerStatus.
func (status WorkerStatus) String() string {
	return string(status)
}
