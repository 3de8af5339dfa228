// Package indicator maps the hottest pixel of a frame to one of the
// cold/normal/warm/alarm visual modes and owns the four output signals
// (blue, green, red, transducer) of the node.
//
// The three colored signals are a shared resource: the alarm controller has
// exclusive write access while it is active, the Policy writes only while it
// is not. Pins is the software pin bank used when no GPIO is attached.
package indicator
