// Package utils provides small conversion helpers shared by the channel
// providers and the queue handlers, which decode loosely typed JSON payloads
// (numbers as strings, amounts as floats) coming from external systems.
package utils
