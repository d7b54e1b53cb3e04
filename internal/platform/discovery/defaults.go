// Package discovery centralizes the local address conventions of the roll services.
package discovery

import (
	"strconv"
	"strings"
)

const (
	// ServiceDice is the dice gRPC and HTTP service identity.
	ServiceDice = "dice"
	// ServiceRedis is the history cache identity.
	ServiceRedis = "redis"
)

// defaultHost is where services listen when nothing else is configured.
const defaultHost = "localhost"

var grpcPorts = map[string]int{
	ServiceDice: 8090,
}

var httpPorts = map[string]int{
	ServiceDice: 8091,
}

var tcpPorts = map[string]int{
	ServiceRedis: 6379,
}

// DefaultGRPCAddr returns the conventional gRPC address for a service.
func DefaultGRPCAddr(service string) string {
	return defaultAddr(strings.TrimSpace(service), grpcPorts)
}

// DefaultHTTPAddr returns the conventional HTTP address for a service.
func DefaultHTTPAddr(service string) string {
	return defaultAddr(strings.TrimSpace(service), httpPorts)
}

// DefaultTCPAddr returns the conventional address of a plain TCP dependency.
func DefaultTCPAddr(service string) string {
	return defaultAddr(strings.TrimSpace(service), tcpPorts)
}

// OrDefaultGRPCAddr returns value when set, otherwise the service convention.
func OrDefaultGRPCAddr(value, service string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	return DefaultGRPCAddr(service)
}

// OrDefaultTCPAddr returns value when set, otherwise the dependency convention.
func OrDefaultTCPAddr(value, service string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	return DefaultTCPAddr(service)
}

func defaultAddr(service string, ports map[string]int) string {
	port, ok := ports[service]
	if !ok || port <= 0 {
		return ""
	}
	return defaultHost + ":" + strconv.Itoa(port)
}
