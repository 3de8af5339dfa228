// Package sensor pulls thermal frames from a Source at a bounded rate and
// turns every successful read into published statistics, an indicator update
// and, above the threshold, an alarm trigger.
//
// Sources are handed over ready to use: bus bring-up and placing the sensor in
// its interleaved acquisition mode happen in Open, once, before the loop
// starts. Besides hardware-less simulation the package can replay frames
// recorded from the /frame endpoint (768 comma separated values per line).
package sensor
